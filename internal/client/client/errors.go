package client

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// Operation-specific outcomes.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrConflict           = errors.New("email already registered")
	ErrInvalidCode        = errors.New("invalid or expired verification code")
	ErrRefreshInvalid     = errors.New("refresh token invalid or expired")

	// Generic HTTP outcomes.
	ErrBadRequest   = errors.New("bad request")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrServerError  = errors.New("server error")

	// Transport outcomes.
	ErrUnreachable = errors.New("server unreachable")
	ErrTimeout     = errors.New("request timed out")
)

// StatusError is a non-2xx response. It unwraps to the generic sentinel for
// its status, so errors.Is(err, ErrNotFound) works on it.
type StatusError struct {
	StatusCode int
	// Message is the server's "message" field, if any.
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("http %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
}

func (e *StatusError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.StatusCode == http.StatusForbidden:
		return ErrForbidden
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode == http.StatusConflict:
		return ErrConflict
	case e.StatusCode >= 500:
		return ErrServerError
	default:
		return ErrBadRequest
	}
}

// remapStatus replaces a StatusError with the given code by target, keeping
// the server message. Any other error is returned unchanged.
func remapStatus(err error, code int, target error) error {
	var se *StatusError
	if !errors.As(err, &se) || se.StatusCode != code {
		return err
	}
	if se.Message == "" {
		return target
	}
	return fmt.Errorf("%w: %s", target, se.Message)
}
