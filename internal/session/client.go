package session

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/maconomy-cli/maconomy/internal/models"
)

// ErrReauthenticationFailed is returned when the server rejects a freshly
// obtained cookie as well.
var ErrReauthenticationFailed = goerr.New("failed to authenticate. Try logging out with `maconomy logout` and then try again")

// Authenticator produces the cookie attached to every request
type Authenticator interface {
	// Authenticate returns the cached cookie or signs in
	Authenticate(ctx context.Context) (models.AuthCookie, error)
	// Reauthenticate discards any cached cookie and signs in again
	Reauthenticate(ctx context.Context) (models.AuthCookie, error)
	// Discard drops the cookie from memory and storage without signing in
	Discard(ctx context.Context) error
}

// Request is a buffered HTTP request that can be sent more than once
type Request struct {
	Method string
	URL    string
	Header http.Header
	Body   []byte
}

// Response is a fully read HTTP response with a 2xx status
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// HTTPError is a non-success response other than an authentication failure
type HTTPError struct {
	Status int
	Header http.Header
	Body   []byte
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("server responded with status %d", e.Status)
}

// Client sends requests with the session cookie and reauthenticates once
// when the server answers 401.
type Client struct {
	http *http.Client
	auth Authenticator
}

type Option func(*Client)

// WithHTTPClient replaces the default http.Client
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.http = c
	}
}

func New(auth Authenticator, opts ...Option) *Client {
	c := &Client{
		http: &http.Client{},
		auth: auth,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Send performs req. A 401 triggers one reauthentication and one retry; a
// second 401 fails with ErrReauthenticationFailed. Any other non-2xx status
// is returned as *HTTPError.
func (c *Client) Send(ctx context.Context, req Request) (*Response, error) {
	logger := ctxlog.From(ctx)

	cookie, err := c.auth.Authenticate(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to authenticate")
	}

	resp, err := c.do(ctx, req, cookie)
	if err != nil {
		return nil, err
	}

	if resp.Status == http.StatusUnauthorized {
		logger.Info("Session expired, reauthenticating", "url", req.URL)

		cookie, err = c.auth.Reauthenticate(ctx)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to reauthenticate")
		}

		resp, err = c.do(ctx, req, cookie)
		if err != nil {
			return nil, err
		}
		if resp.Status == http.StatusUnauthorized {
			// Two rejections in a row: the new cookie is no good either
			if err := c.auth.Discard(ctx); err != nil {
				logger.Warn("Failed to discard rejected cookie", "error", err)
			}
			return nil, goerr.Wrap(ErrReauthenticationFailed, "server rejected new session cookie",
				goerr.V("url", req.URL))
		}
	}

	if resp.Status < 200 || resp.Status >= 300 {
		return nil, &HTTPError{Status: resp.Status, Header: resp.Header, Body: resp.Body}
	}

	return resp, nil
}

func (c *Client) do(ctx context.Context, req Request, cookie models.AuthCookie) (*Response, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create request", goerr.V("url", req.URL))
	}
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}
	// The server wants the cookie both as a cookie and in the Authorization header
	httpReq.Header.Set("Cookie", cookie.String())
	httpReq.Header.Set("Authorization", "X-Cookie "+cookie.Name)

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to send request", goerr.V("method", req.Method), goerr.V("url", req.URL))
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read response body", goerr.V("url", req.URL))
	}

	ctxlog.From(ctx).Debug("Maconomy request",
		"method", req.Method,
		"url", req.URL,
		"status", httpResp.StatusCode,
	)

	return &Response{
		Status: httpResp.StatusCode,
		Header: httpResp.Header,
		Body:   respBody,
	}, nil
}
