package models

import (
	"time"
)

// AuthCookie is the Maconomy session cookie obtained through SSO sign-in
type AuthCookie struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`

	Name  string `gorm:"not null" json:"name"`
	Value string `gorm:"not null" json:"value"`
}

// String renders the cookie as it goes into a Cookie header
func (c AuthCookie) String() string {
	return c.Name + "=" + c.Value
}
