package device

import (
	"errors"
	"fmt"
)

var (
	// ErrNotConfigured is returned when a live printer is requested without an address.
	ErrNotConfigured = errors.New("printer address not configured")

	// ErrUnexpectedStatus is wrapped by RequestError for non-2xx responses.
	ErrUnexpectedStatus = errors.New("unexpected response status")
)

// RequestError describes a failed PrusaLink call.
type RequestError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *RequestError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// Unwrap allows errors.Is(err, ErrUnexpectedStatus).
func (e *RequestError) Unwrap() error {
	return ErrUnexpectedStatus
}
