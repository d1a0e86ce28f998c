package remote

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is returned when the backend has no record for the key.
var ErrNotFound = errors.New("not found")

// StatusError is a non-2xx backend response.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.StatusCode)
}

// Unwrap lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

// IsNotFound reports whether err is a backend "not found".
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRejected reports whether the backend rejected the request as invalid
// (e.g. a duplicate username on registration).
func IsRejected(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode == http.StatusBadRequest || se.StatusCode == http.StatusConflict
	}
	return false
}
