package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructors(t *testing.T) {
	cause := errors.New("root cause")

	tests := []struct {
		name   string
		err    *AppError
		typ    ErrorType
		status int
	}{
		{"validation", NewValidationError("bad", cause), ErrorTypeValidation, http.StatusBadRequest},
		{"network", NewNetworkError("net", cause), ErrorTypeNetwork, http.StatusBadGateway},
		{"processing", NewProcessingError("proc", cause), ErrorTypeProcessing, http.StatusUnprocessableEntity},
		{"timeout", NewTimeoutError("slow", cause), ErrorTypeTimeout, http.StatusGatewayTimeout},
		{"internal", NewInternalError("oops", cause), ErrorTypeInternal, http.StatusInternalServerError},
		{"not found", NewNotFoundError("gone", cause), ErrorTypeNotFound, http.StatusNotFound},
		{"decode", NewDecodeFailureError("corrupt", cause), ErrorTypeDecodeFailure, http.StatusUnprocessableEntity},
		{"no opaque", NewNoOpaquePixelsError("clear", nil), ErrorTypeNoOpaquePixels, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Type != tt.typ {
				t.Errorf("Expected type %s, got %s", tt.typ, tt.err.Type)
			}
			if tt.err.StatusCode != tt.status {
				t.Errorf("Expected status %d, got %d", tt.status, tt.err.StatusCode)
			}
		})
	}
}

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	cause := errors.New("disk on fire")
	err := NewInternalError("write failed", cause)

	if err.Error() != "internal: write failed (caused by: disk on fire)" {
		t.Errorf("Unexpected message: %s", err.Error())
	}
	if !errors.Is(err, cause) {
		t.Error("Expected errors.Is to find the cause")
	}

	plain := NewValidationError("missing name", nil)
	if plain.Error() != "validation: missing name" {
		t.Errorf("Unexpected message: %s", plain.Error())
	}
}

func TestIsTypeAndStatusThroughWrapping(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", NewNotFoundError("no such image", nil))

	if !IsType(wrapped, ErrorTypeNotFound) {
		t.Error("Expected IsType to see through fmt wrapping")
	}
	if IsType(wrapped, ErrorTypeValidation) {
		t.Error("Expected IsType to reject other types")
	}
	if GetStatusCode(wrapped) != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", GetStatusCode(wrapped))
	}
	if GetStatusCode(errors.New("plain")) != http.StatusInternalServerError {
		t.Error("Expected 500 for non-AppError")
	}
}

func TestWithDetails(t *testing.T) {
	base := NewNotFoundError("no such image", nil)
	detailed := base.WithDetails("did you mean metapod.png?")

	if detailed.Details != "did you mean metapod.png?" {
		t.Errorf("Unexpected details: %s", detailed.Details)
	}
	if base.Details != "" {
		t.Error("Expected WithDetails to leave the original untouched")
	}
}
