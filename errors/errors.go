// Package errors provides the error handling system for the Wingman gateway.
// It includes structured error types, JSON response formatting, request ID tracking,
// and integrated logging with Uber's zap logger.
//
// The package is designed to be used throughout the Wingman codebase to provide
// consistent error handling and reporting. It offers several key features:
//
//   - Structured JSON error responses with type information
//   - Request ID tracking for error correlation
//   - Integrated logging with zap
//   - Custom error types for different scenarios
//   - Middleware integration for panic recovery
//
// Basic usage:
//
//	// Simple error response
//	errors.Error(w, "Something went wrong", http.StatusBadRequest)
//
//	// Type-specific error with context
//	errors.ErrorWithType(w, "Invalid input", errors.ValidationError, http.StatusBadRequest)
//
// For more complex scenarios, use the error constructors in types.go:
//
//	err := errors.NewValidationError(requestID, "Invalid input", map[string]interface{}{
//	    "field": "draft",
//	    "error": "required",
//	})
package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"go.uber.org/zap"
)

// DefaultLogger is the default zap logger instance used throughout the package.
// It is initialized to a production configuration but can be overridden using SetLogger.
var DefaultLogger *zap.Logger

func init() {
	var err error
	DefaultLogger, err = zap.NewProduction()
	if err != nil {
		DefaultLogger = zap.NewNop()
	}
}

// SetLogger allows setting a custom zap logger instance.
// If nil is provided, the function will do nothing to prevent
// accidentally disabling logging.
func SetLogger(logger *zap.Logger) {
	if logger != nil {
		DefaultLogger = logger
	}
}

// ErrorType represents different categories of errors that can occur
// in the Wingman system. Each type corresponds to a specific kind of
// error scenario and carries appropriate HTTP status codes and handling logic.
type ErrorType string

const (
	// ValidationError represents input validation failures, such as a
	// missing required field for the selected mode
	ValidationError ErrorType = "validation_error"

	// ProviderError represents transport, auth, or structurally-empty
	// responses from a generation provider
	ProviderError ErrorType = "provider_error"

	// NormalizationError represents a provider response that could not be
	// coerced into the expected {"reply": ...} shape
	NormalizationError ErrorType = "normalization_error"

	// TimeoutError represents a generation call that exceeded its deadline
	TimeoutError ErrorType = "timeout"

	// RateLimitError represents rate limiting errors
	RateLimitError ErrorType = "rate_limit_error"

	// InternalError represents unexpected internal server errors
	InternalError ErrorType = "internal_error"

	// ConfigError represents configuration-related errors
	ConfigError ErrorType = "config_error"

	// BadRequestError represents invalid request format or parameters
	BadRequestError ErrorType = "bad_request"

	// NotFoundError represents resource not found errors
	NotFoundError ErrorType = "not_found"
)

// NormalizationKind distinguishes the two ways a provider reply can fail
// normalization. It is carried in the error details so clients and logs can
// tell malformed output apart from output that parsed but lacked the reply field.
type NormalizationKind string

const (
	// InvalidFormat means the raw text was not parseable as JSON even after
	// fence stripping and the bounded brace-extraction fallback.
	InvalidFormat NormalizationKind = "invalid_format"

	// MissingField means the text parsed as JSON but the required "reply"
	// key was absent.
	MissingField NormalizationKind = "missing_field"
)

// WingmanError is our custom error type that implements the error interface
// and provides additional context about the error. It is designed to be
// serialized to JSON for API responses while maintaining internal error
// context for logging and debugging.
type WingmanError struct {
	// Type categorizes the error for client handling
	Type ErrorType `json:"type"`

	// Message is a human-readable error description
	Message string `json:"message"`

	// Code is the HTTP status code (not exposed in JSON)
	Code int `json:"-"`

	// RequestID links the error to a specific request
	RequestID string `json:"request_id"`

	// Details contains additional error context
	Details map[string]interface{} `json:"details,omitempty"`

	// err is the underlying error (not exposed in JSON)
	err error
}

// Error implements the error interface. It returns a string that
// combines the error type, message, and underlying error (if any).
func (e *WingmanError) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error, implementing the unwrap
// interface for error chains.
func (e *WingmanError) Unwrap() error {
	return e.err
}

// Is implements error matching for errors.Is, allowing type-based
// error matching while ignoring other fields.
func (e *WingmanError) Is(target error) bool {
	t, ok := target.(*WingmanError)
	if !ok {
		return false
	}
	return e.Type == t.Type
}

// WriteError formats and writes a WingmanError to an http.ResponseWriter.
// It sets the appropriate content type and status code, then writes
// the error as a JSON response.
func WriteError(w http.ResponseWriter, err *WingmanError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	if encErr := json.NewEncoder(w).Encode(err); encErr != nil {
		DefaultLogger.Error("Failed to encode error response", zap.Error(encErr))
	}
}

// Error is a drop-in replacement for http.Error that creates and writes
// a WingmanError with the InternalError type. It automatically includes
// the request ID from the response headers if available.
func Error(w http.ResponseWriter, message string, code int) {
	requestID := w.Header().Get("X-Request-ID")
	err := &WingmanError{
		Type:      InternalError,
		Message:   message,
		Code:      code,
		RequestID: requestID,
	}
	WriteError(w, err)
}

// ErrorWithType is like Error but allows specifying the error type.
// This is useful when you want to indicate specific error categories
// to the client while maintaining the simple interface of http.Error.
func ErrorWithType(w http.ResponseWriter, message string, errType ErrorType, code int) {
	requestID := w.Header().Get("X-Request-ID")
	err := &WingmanError{
		Type:      errType,
		Message:   message,
		Code:      code,
		RequestID: requestID,
	}
	WriteError(w, err)
}
