package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across transport
// layers. The values double as the `error` field of API error bodies.
type ErrorCode string

const (
	ErrCodeValidation   ErrorCode = "Validation Error"
	ErrCodeUnauthorized ErrorCode = "Unauthorized"
	ErrCodeNotFound     ErrorCode = "Not Found"
	ErrCodeDatabase     ErrorCode = "Database Error"
	ErrCodeUnavailable  ErrorCode = "Service Unavailable"
	ErrCodeInternal     ErrorCode = "Internal Server Error"
)

// Error represents a domain-level error. Message is always user-safe;
// the wrapped Err carries raw upstream detail for operators.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrTaskNotFound = NewError(ErrCodeNotFound, "Task not found")
	ErrUnauthorized = NewError(ErrCodeUnauthorized, "Invalid or expired token")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}
