package api

import (
	"errors"
	"fmt"
)

// ErrNoSession is returned when an authenticated call is attempted with no
// stored token. The request is never issued in that case.
var ErrNoSession = errors.New("no active session")

// AuthError marks a 401 from the backend. It is handled globally (session
// teardown) rather than surfaced inline, and is distinct from APIError so
// callers can retry public endpoints without auth.
type AuthError struct {
	Status int
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed (status %d)", e.Status)
}

// APIError is any non-2xx, non-401 response.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("api error (%d): %s", e.Status, e.Body)
	}
	return fmt.Sprintf("api error (%d)", e.Status)
}

// ParseError marks a 2xx response whose body was not valid JSON.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed response: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IsAuthFailure reports whether err belongs to the authentication error class
// (missing session or 401).
func IsAuthFailure(err error) bool {
	if errors.Is(err, ErrNoSession) {
		return true
	}
	var ae *AuthError
	return errors.As(err, &ae)
}
