// Package errors defines the typed application errors shared by every layer.
// The service layer raises a specific kind at the point of detection and the
// HTTP layer maps kinds to status codes without inspecting messages.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType classifies an application error.
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeInternal     ErrorType = "INTERNAL"

	// ErrorTypeCascadeFailure marks a partial success: the primary mutation
	// committed but a dependent cascade write failed afterwards. It must never
	// be collapsed into plain success or plain failure.
	ErrorTypeCascadeFailure ErrorType = "CASCADE_FAILURE"
)

// AppError is the error value carried across layers.
type AppError struct {
	Type       ErrorType
	Message    string
	Details    map[string]interface{}
	Cause      error
	HTTPStatus int
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails attaches structured details to the error.
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// NewValidation creates a validation error. Reported before any mutation.
func NewValidation(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
	}
}

// NewNotFound creates a not found error for the named resource.
func NewNotFound(resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

// NewConflict creates a conflict error (duplicate unique field).
func NewConflict(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

// NewUnauthorized creates an unauthorized error.
func NewUnauthorized(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

// NewInternal creates an internal error wrapping an unexpected failure.
func NewInternal(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		Cause:      cause,
		HTTPStatus: http.StatusInternalServerError,
	}
}

// NewCascadeFailure records that committed already happened while pending
// failed. The cause is preserved for classification of the failed step.
func NewCascadeFailure(committed, pending string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeCascadeFailure,
		Message:    fmt.Sprintf("%s, but %s failed", committed, pending),
		Cause:      cause,
		HTTPStatus: http.StatusInternalServerError,
		Details: map[string]interface{}{
			"committed": committed,
			"pending":   pending,
		},
	}
}

// GetAppError extracts an AppError from an error chain, or nil.
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsType checks whether err carries the given error type.
func IsType(err error, errType ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == errType
}

func IsValidation(err error) bool     { return IsType(err, ErrorTypeValidation) }
func IsNotFound(err error) bool       { return IsType(err, ErrorTypeNotFound) }
func IsConflict(err error) bool       { return IsType(err, ErrorTypeConflict) }
func IsUnauthorized(err error) bool   { return IsType(err, ErrorTypeUnauthorized) }
func IsInternal(err error) bool       { return IsType(err, ErrorTypeInternal) }
func IsCascadeFailure(err error) bool { return IsType(err, ErrorTypeCascadeFailure) }

// Wrap adds context to an error, preserving its kind when it already is an
// AppError and defaulting unclassified failures to internal.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr := GetAppError(err); appErr != nil {
		appErr.Message = fmt.Sprintf("%s: %s", message, appErr.Message)
		return appErr
	}
	return NewInternal(message, err)
}
