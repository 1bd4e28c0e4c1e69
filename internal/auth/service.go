package auth

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/maconomy-cli/maconomy/internal/models"
)

// ErrSignInTimeout is returned when the user does not finish signing in in time
var ErrSignInTimeout = goerr.New("timed out waiting for sign-in")

// CookieStore persists the cookie between runs
type CookieStore interface {
	LoadCookie() (*models.AuthCookie, error)
	SaveCookie(cookie models.AuthCookie) error
	DeleteCookie() error
}

// PromptFunc asks the user for the cookie after they signed in at loginURL.
// It returns the raw "name=value" text.
type PromptFunc func(ctx context.Context, loginURL string) (string, error)

// Service hands out the Maconomy session cookie. Lookup order is memory,
// then the persisted store, then an interactive sign-in.
type Service struct {
	mu       sync.Mutex
	cookie   *models.AuthCookie
	store    CookieStore
	prompt   PromptFunc
	browser  func(url string) error
	loginURL string
	timeout  time.Duration
}

type Option func(*Service)

// WithBrowser replaces the function used to open the login page
func WithBrowser(open func(url string) error) Option {
	return func(s *Service) {
		s.browser = open
	}
}

func New(store CookieStore, prompt PromptFunc, loginURL string, timeout time.Duration, opts ...Option) *Service {
	s := &Service{
		store:    store,
		prompt:   prompt,
		browser:  OpenBrowser,
		loginURL: loginURL,
		timeout:  timeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Authenticate returns the cached cookie, signing in when there is none
func (s *Service) Authenticate(ctx context.Context) (models.AuthCookie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cookie != nil {
		return *s.cookie, nil
	}

	stored, err := s.store.LoadCookie()
	if err != nil {
		return models.AuthCookie{}, goerr.Wrap(err, "failed to load stored cookie")
	}
	if stored != nil {
		s.cookie = stored
		return *stored, nil
	}

	return s.signIn(ctx)
}

// Reauthenticate forgets the current cookie and signs in again
func (s *Service) Reauthenticate(ctx context.Context) (models.AuthCookie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.forget(); err != nil {
		return models.AuthCookie{}, err
	}
	return s.signIn(ctx)
}

// Logout removes the cookie from memory and from the store
func (s *Service) Logout(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.forget(); err != nil {
		return err
	}
	ctxlog.From(ctx).Info("Removed stored session cookie")
	return nil
}

// Discard drops a cookie the server rejected so the next run signs in afresh
func (s *Service) Discard(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.forget(); err != nil {
		return err
	}
	ctxlog.From(ctx).Info("Discarded rejected session cookie")
	return nil
}

func (s *Service) forget() error {
	s.cookie = nil
	if err := s.store.DeleteCookie(); err != nil {
		return goerr.Wrap(err, "failed to delete stored cookie")
	}
	return nil
}

func (s *Service) signIn(ctx context.Context) (models.AuthCookie, error) {
	logger := ctxlog.From(ctx)

	if s.loginURL == "" {
		return models.AuthCookie{}, goerr.New("configuration value `authentication.sso.login_url` is missing. Please set it in ./config.toml or ~/.config/maconomy-cli/config.toml")
	}
	if s.prompt == nil {
		return models.AuthCookie{}, goerr.New("interactive sign-in is not available")
	}

	if err := s.browser(s.loginURL); err != nil {
		// The prompt still shows the URL so the user can open it by hand
		logger.Warn("Failed to open browser", "url", s.loginURL, "error", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	raw, err := s.prompt(ctx, s.loginURL)
	if ctx.Err() == context.DeadlineExceeded {
		return models.AuthCookie{}, goerr.Wrap(ErrSignInTimeout, "sign-in was not completed", goerr.V("timeout", s.timeout.String()))
	}
	if err != nil {
		return models.AuthCookie{}, goerr.Wrap(err, "failed to sign in")
	}

	cookie, err := ParseCookie(raw)
	if err != nil {
		return models.AuthCookie{}, err
	}

	if err := s.store.SaveCookie(cookie); err != nil {
		return models.AuthCookie{}, goerr.Wrap(err, "failed to persist cookie")
	}
	s.cookie = &cookie

	logger.Info("Signed in", "cookie", cookie.Name)
	return cookie, nil
}

// ParseCookie parses "name=value", tolerating a leading "Cookie:" and
// surrounding whitespace or quotes.
func ParseCookie(raw string) (models.AuthCookie, error) {
	s := strings.TrimSpace(raw)
	if len(s) >= len("cookie:") && strings.EqualFold(s[:len("cookie:")], "cookie:") {
		s = strings.TrimSpace(s[len("cookie:"):])
	}
	s = strings.Trim(s, `"'`)
	s = strings.TrimSuffix(s, ";")

	name, value, ok := strings.Cut(s, "=")
	name = strings.TrimSpace(name)
	value = strings.TrimSpace(value)
	if !ok || name == "" || value == "" || strings.ContainsAny(name, " ;") {
		return models.AuthCookie{}, goerr.New("invalid cookie, expected name=value", goerr.V("cookie", raw))
	}

	return models.AuthCookie{Name: name, Value: value}, nil
}
