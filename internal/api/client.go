// Package api is the authenticated transport every feature goes through.
// It attaches the bearer token, classifies failures into the three error
// classes the rest of the client distinguishes (auth, request, parse), and
// runs the global auth-failure hook on 401. Every call is a single
// best-effort attempt: no retry, no backoff.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/pkg/errors"
)

// TokenSource yields the current bearer token, or "" when anonymous.
type TokenSource interface {
	Token() string
}

// Client issues JSON requests against the platform backend.
type Client struct {
	base          string
	httpClient    *http.Client
	tokens        TokenSource
	onAuthFailure func()
	log           *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying http.Client, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// New builds a client for the given base URL. onAuthFailure runs whenever a
// call fails the auth class check (no token, or a 401 response); pass nil
// when no global side effect is wanted.
func New(baseURL string, tokens TokenSource, onAuthFailure func(), opts ...Option) (*Client, error) {
	if _, err := url.Parse(baseURL); err != nil {
		return nil, errors.Wrapf(err, "invalid base URL %q", baseURL)
	}
	c := &Client{
		base:          strings.TrimRight(baseURL, "/"),
		httpClient:    http.DefaultClient,
		tokens:        tokens,
		onAuthFailure: onAuthFailure,
		log:           slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the resolved backend base URL.
func (c *Client) BaseURL() string { return c.base }

// Do issues an authenticated JSON request. With no stored token it fires the
// auth-failure hook and returns ErrNoSession without touching the network.
// On 401 it fires the hook and returns an *AuthError. Other non-2xx statuses
// become *APIError; a success body that fails to decode becomes *ParseError.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	token := ""
	if c.tokens != nil {
		token = c.tokens.Token()
	}
	if token == "" {
		c.log.Debug("authenticated request without session", "method", method, "path", path)
		c.authFailed()
		return ErrNoSession
	}
	return c.do(ctx, method, path, token, body, out)
}

// DoPublic issues a request without credentials, for the login, register and
// password-reset endpoints.
func (c *Client) DoPublic(ctx context.Context, method, path string, body, out any) error {
	return c.do(ctx, method, path, "", body, out)
}

// PostForm issues an unauthenticated form-encoded POST, the shape the token
// endpoint requires.
func (c *Client) PostForm(ctx context.Context, path string, form url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, strings.NewReader(form.Encode()))
	if err != nil {
		return errors.Wrap(err, "build form request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.send(req, "", out)
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		buf := &bytes.Buffer{}
		if err := json.NewEncoder(buf).Encode(body); err != nil {
			return errors.Wrap(err, "encode request body")
		}
		reader = buf
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, reader)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, token, out)
}

func (c *Client) send(req *http.Request, token string, out any) error {
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", req.Method, req.URL.Path)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		c.log.Debug("request rejected with 401", "method", req.Method, "path", req.URL.Path)
		// A 401 on a public endpoint (bad login) is the caller's problem,
		// not a session teardown.
		if token != "" {
			c.authFailed()
		}
		return &AuthError{Status: resp.StatusCode}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		payload, _ := io.ReadAll(resp.Body)
		return &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(payload))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &ParseError{Err: err}
	}
	return nil
}

func (c *Client) authFailed() {
	if c.onAuthFailure != nil {
		c.onAuthFailure()
	}
}
