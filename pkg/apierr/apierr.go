// Package apierr defines the error taxonomy shared by the registries,
// the session manager, and the HTTP layer.
//
// Errors carry a stable code so transports can map them to status codes
// without string matching. Use errors.As to extract an *Error from a
// wrapped chain.
package apierr

import (
	"errors"
	"fmt"
)

// Code classifies an error for transport mapping.
type Code string

const (
	CodeValidation Code = "VALIDATION"
	CodeNotFound   Code = "NOT_FOUND"
	CodeForbidden  Code = "FORBIDDEN"
	CodeConflict   Code = "CONFLICT"
	CodeProvider   Code = "PROVIDER"
	CodeInternal   Code = "INTERNAL"
)

// Error is a coded application error.
type Error struct {
	Code    Code
	Message string
	// Field names the offending request field for validation errors.
	Field string
	Err   error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation reports a malformed or incomplete request body.
func Validation(field, message string) *Error {
	return &Error{Code: CodeValidation, Field: field, Message: message}
}

// NotFound reports a missing persona, agent, model, or session.
func NotFound(kind, id string) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf("%s %q not found", kind, id)}
}

// Forbidden reports an attempt to mutate a built-in registry entry.
func Forbidden(message string) *Error {
	return &Error{Code: CodeForbidden, Message: message}
}

// Conflict reports a duplicate identifier on create.
func Conflict(message string) *Error {
	return &Error{Code: CodeConflict, Message: message}
}

// Provider wraps an upstream AI provider failure. Provider errors are
// never surfaced raw to end users; the dispatch gateway recovers them
// with a local fallback response.
func Provider(message string, cause error) *Error {
	return &Error{Code: CodeProvider, Message: message, Err: cause}
}

// Internal wraps an unexpected failure.
func Internal(message string, cause error) *Error {
	return &Error{Code: CodeInternal, Message: message, Err: cause}
}

// CodeOf returns the code of err, or CodeInternal when err carries none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
