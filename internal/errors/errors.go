package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation     ErrorType = "validation"
	ErrorTypeNetwork        ErrorType = "network"
	ErrorTypeProcessing     ErrorType = "processing"
	ErrorTypeTimeout        ErrorType = "timeout"
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeInternal       ErrorType = "internal"
	ErrorTypeDecodeFailure  ErrorType = "decode_failure"
	ErrorTypeNoOpaquePixels ErrorType = "no_opaque_pixels"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	StatusCode int       `json:"status_code"`
	Cause      error     `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithDetails returns a copy carrying extra detail text
func (e *AppError) WithDetails(details string) *AppError {
	cp := *e
	cp.Details = details
	return &cp
}

func newAppError(t ErrorType, status int, message string, cause error) *AppError {
	return &AppError{
		Type:       t,
		Message:    message,
		StatusCode: status,
		Cause:      cause,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message string, cause error) *AppError {
	return newAppError(ErrorTypeValidation, http.StatusBadRequest, message, cause)
}

// NewNetworkError creates a new network error
func NewNetworkError(message string, cause error) *AppError {
	return newAppError(ErrorTypeNetwork, http.StatusBadGateway, message, cause)
}

// NewProcessingError creates a new processing error
func NewProcessingError(message string, cause error) *AppError {
	return newAppError(ErrorTypeProcessing, http.StatusUnprocessableEntity, message, cause)
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(message string, cause error) *AppError {
	return newAppError(ErrorTypeTimeout, http.StatusGatewayTimeout, message, cause)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, cause error) *AppError {
	return newAppError(ErrorTypeInternal, http.StatusInternalServerError, message, cause)
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string, cause error) *AppError {
	return newAppError(ErrorTypeNotFound, http.StatusNotFound, message, cause)
}

// NewDecodeFailureError is returned when an image exists but cannot be decoded
func NewDecodeFailureError(message string, cause error) *AppError {
	return newAppError(ErrorTypeDecodeFailure, http.StatusUnprocessableEntity, message, cause)
}

// NewNoOpaquePixelsError is returned when an average was requested for an
// image without a single fully opaque pixel
func NewNoOpaquePixelsError(message string, cause error) *AppError {
	return newAppError(ErrorTypeNoOpaquePixels, http.StatusUnprocessableEntity, message, cause)
}

// IsType checks if the error chain contains an AppError of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// GetStatusCode extracts the HTTP status code from an error
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}
