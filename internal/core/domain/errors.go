package domain

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNetwork            = errors.New("network error")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAuthExpired        = errors.New("session expired, please log in again")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrValidation         = errors.New("validation error")
	ErrNotFound           = errors.New("not found")
	ErrServer             = errors.New("server error")
)

// APIError is a non-2xx response from the API. errors.Is matches it against
// the sentinel for its status class.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s (HTTP %d)", e.kind(), e.StatusCode)
	}
	return fmt.Sprintf("%s (HTTP %d): %s", e.kind(), e.StatusCode, e.Message)
}

func (e *APIError) Unwrap() error {
	return e.kind()
}

func (e *APIError) kind() error {
	switch {
	case e.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case e.StatusCode == http.StatusNotFound:
		return ErrNotFound
	case e.StatusCode >= 500:
		return ErrServer
	default:
		return ErrValidation
	}
}

// StatusCode extracts the HTTP status from err, or 0 when err carries none.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
