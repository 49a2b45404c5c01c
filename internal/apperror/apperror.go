// Package apperror defines the error kinds shared by the stores, services and handlers.
//
// Every failure a user action can hit falls into one of the sentinel kinds below. Callers
// classify with errors.Is and read the human-readable text from *AppError.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrValidation         = errors.New("validation error")
	ErrNotFound           = errors.New("not found")
	ErrConflict           = errors.New("conflict")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrRateLimited        = errors.New("rate limited")
	ErrBackendUnavailable = errors.New("backend unavailable")
	ErrAnalysisFailed     = errors.New("analysis failed")
)

// AppError carries a kind (Err), a message safe to show the user, and optionally the
// offending field for inline validation feedback.
type AppError struct {
	Err     error
	Message string
	Field   string
	cause   error
}

func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap exposes both the kind and the underlying cause to errors.Is / errors.As.
func (e *AppError) Unwrap() []error {
	if e.cause != nil {
		return []error{e.Err, e.cause}
	}
	return []error{e.Err}
}

// Cause returns the wrapped low-level error, if any.
func (e *AppError) Cause() error {
	return e.cause
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{Err: ErrValidation, Message: message, Field: field}
}

func NotFound(resource, id string) *AppError {
	return &AppError{Err: ErrNotFound, Message: fmt.Sprintf("%s not found with id %s", resource, id)}
}

func Conflict(message string) *AppError {
	return &AppError{Err: ErrConflict, Message: message}
}

func Unauthorized(message string) *AppError {
	return &AppError{Err: ErrUnauthorized, Message: message}
}

func Forbidden(message string) *AppError {
	return &AppError{Err: ErrForbidden, Message: message}
}

func RateLimited(message string) *AppError {
	return &AppError{Err: ErrRateLimited, Message: message}
}

// BackendUnavailable wraps a transport or permission failure from a remote store.
func BackendUnavailable(op string, cause error) *AppError {
	return &AppError{Err: ErrBackendUnavailable, Message: "backend unavailable during " + op, cause: cause}
}

// AnalysisFailed wraps any failure of an AI prompt call. Callers do not distinguish
// network failures from bad model output.
func AnalysisFailed(flow string, cause error) *AppError {
	return &AppError{Err: ErrAnalysisFailed, Message: flow + " failed", cause: cause}
}

// Field returns the field name attached to a validation error, or "".
func Field(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Field
	}
	return ""
}
