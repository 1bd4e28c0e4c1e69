package commands

import (
	"github.com/maconomy-cli/maconomy/internal/auth"
	"github.com/maconomy-cli/maconomy/internal/db"
	"github.com/maconomy-cli/maconomy/internal/maconomy"
	"github.com/maconomy-cli/maconomy/internal/session"
	"github.com/maconomy-cli/maconomy/internal/timesheet"
	"github.com/maconomy-cli/maconomy/internal/tui"
)

// newAuthService opens the cookie store and builds the authentication provider
func newAuthService() (*auth.Service, error) {
	if err := db.Initialize(cfg.Storage.Path); err != nil {
		return nil, err
	}
	return auth.New(db.CookieStore{}, tui.PromptCookie, cfg.Auth.LoginURL, cfg.Auth.Timeout), nil
}

// newTimeSheetService wires the layers between the commands and the server
func newTimeSheetService() (*timesheet.Service, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	authService, err := newAuthService()
	if err != nil {
		return nil, err
	}

	client := maconomy.New(session.New(authService), cfg.MaconomyURL, cfg.CompanyID)
	return timesheet.NewService(timesheet.NewRepository(client)), nil
}
