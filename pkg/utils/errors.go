package utils

import (
	"errors"
	"fmt"
	"runtime"
)

// AppError represents an application error with context
type AppError struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details string            `json:"details,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
	File    string            `json:"-"`
	Line    int               `json:"-"`
	cause   error
}

func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.cause
}

// NewAppError creates a new application error
func NewAppError(code, message string, details ...string) *AppError {
	_, file, line, _ := runtime.Caller(1)

	err := &AppError{
		Code:    code,
		Message: message,
		File:    file,
		Line:    line,
	}

	if len(details) > 0 {
		err.Details = details[0]
	}

	return err
}

// Wrap keeps err reachable through errors.Is/As while presenting code and message to callers
func Wrap(code, message string, err error) *AppError {
	_, file, line, _ := runtime.Caller(1)
	appErr := &AppError{Code: code, Message: message, File: file, Line: line, cause: err}
	if err != nil {
		appErr.Details = err.Error()
	}
	return appErr
}

// Common error codes
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeInvalidTransition = "INVALID_TRANSITION"
	ErrCodeTransport         = "TRANSPORT_ERROR"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeConflict          = "CONFLICT"
	ErrCodeDatabase          = "DATABASE_ERROR"
	ErrCodeConfiguration     = "CONFIGURATION_ERROR"
	ErrCodeInternal          = "INTERNAL_ERROR"
)

// ValidationError reports field-level problems found before any write happens
func ValidationError(fields map[string]string) *AppError {
	err := NewAppError(ErrCodeValidation, "validation failed")
	err.Fields = fields
	return err
}

// NotFoundError reports a reference to a record that does not exist
func NotFoundError(kind, id string) *AppError {
	return NewAppError(ErrCodeNotFound, kind+" not found", id)
}

// InvalidTransitionError reports a status change on a record that is already finalized
func InvalidTransitionError(id, from, to string) *AppError {
	return NewAppError(ErrCodeInvalidTransition, "already finalized",
		fmt.Sprintf("entry %s cannot move from %s to %s", id, from, to))
}

// TransportError reports a network or backend failure; the caller may resubmit
func TransportError(err error) *AppError {
	return Wrap(ErrCodeTransport, "service temporarily unavailable, please retry", err)
}

// CodeOf returns the AppError code anywhere in err's chain, or "" when there is none
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

func IsValidation(err error) bool        { return CodeOf(err) == ErrCodeValidation }
func IsNotFound(err error) bool          { return CodeOf(err) == ErrCodeNotFound }
func IsInvalidTransition(err error) bool { return CodeOf(err) == ErrCodeInvalidTransition }
func IsTransport(err error) bool         { return CodeOf(err) == ErrCodeTransport }
