package session

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes store errors.
type ErrorCode string

const (
	// CodeNotFound indicates a lookup miss. Recoverable.
	CodeNotFound ErrorCode = "NOT_FOUND"

	// CodeValidation indicates rejected input; nothing was mutated.
	CodeValidation ErrorCode = "VALIDATION_FAILED"

	// CodeTransient indicates a backend call failed. Local state stands.
	CodeTransient ErrorCode = "TRANSIENT_SYNC"

	// CodeIdentityInvalidated indicates the backend no longer knows the
	// stored identity and the store reset itself.
	CodeIdentityInvalidated ErrorCode = "IDENTITY_INVALIDATED"
)

// SyncError is returned by Store operations.
type SyncError struct {
	// Code identifies the error category.
	Code ErrorCode

	// Op names the store operation (e.g. "register").
	Op string

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *SyncError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (op=%s): %v", e.Code, e.Message, e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s (op=%s)", e.Code, e.Message, e.Op)
}

// Unwrap returns the underlying cause.
func (e *SyncError) Unwrap() error {
	return e.Err
}

func hasCode(err error, code ErrorCode) bool {
	var se *SyncError
	if errors.As(err, &se) {
		return se.Code == code
	}
	return false
}

// IsNotFound reports whether err is a lookup miss.
func IsNotFound(err error) bool { return hasCode(err, CodeNotFound) }

// IsValidation reports whether err is a rejected input.
func IsValidation(err error) bool { return hasCode(err, CodeValidation) }

// IsTransient reports whether err is a failed backend call.
func IsTransient(err error) bool { return hasCode(err, CodeTransient) }

// IsIdentityInvalidated reports whether the store self-healed.
func IsIdentityInvalidated(err error) bool { return hasCode(err, CodeIdentityInvalidated) }

func notFound(op, msg string) *SyncError {
	return &SyncError{Code: CodeNotFound, Op: op, Message: msg}
}

func validation(op string, err error) *SyncError {
	return &SyncError{Code: CodeValidation, Op: op, Message: "invalid input", Err: err}
}

func transient(op string, err error) *SyncError {
	return &SyncError{Code: CodeTransient, Op: op, Message: "backend call failed", Err: err}
}
