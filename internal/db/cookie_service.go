package db

import (
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"gorm.io/gorm"

	"github.com/maconomy-cli/maconomy/internal/models"
)

var errNotInitialized = goerr.New("database is not initialized")

// CookieStore persists the single auth cookie in the sqlite database.
// It is a thin handle over the package-level DB.
type CookieStore struct{}

// LoadCookie returns the persisted cookie, or nil when none is stored
func (CookieStore) LoadCookie() (*models.AuthCookie, error) {
	if DB == nil {
		return nil, errNotInitialized
	}

	var cookie models.AuthCookie
	err := DB.Order("updated_at DESC").First(&cookie).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil // No cookie is not an error
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load auth cookie")
	}

	return &cookie, nil
}

// SaveCookie replaces any stored cookie with the given one
func (CookieStore) SaveCookie(cookie models.AuthCookie) error {
	if DB == nil {
		return errNotInitialized
	}

	return DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.AuthCookie{}).Error; err != nil {
			return goerr.Wrap(err, "failed to remove previous auth cookie")
		}

		record := models.AuthCookie{Name: cookie.Name, Value: cookie.Value}
		if err := tx.Create(&record).Error; err != nil {
			return goerr.Wrap(err, "failed to save auth cookie")
		}
		return nil
	})
}

// DeleteCookie removes the stored cookie; deleting nothing is fine
func (CookieStore) DeleteCookie() error {
	if DB == nil {
		return errNotInitialized
	}

	if err := DB.Where("1 = 1").Delete(&models.AuthCookie{}).Error; err != nil {
		return goerr.Wrap(err, "failed to delete auth cookie")
	}
	return nil
}
