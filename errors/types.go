package errors

import (
	"net/http"
)

// NewError creates a new WingmanError with the given parameters.
// It is a general-purpose constructor that allows full control over
// the error's fields. For most cases, you should use one of the
// specialized constructors below.
//
// Example:
//
//	err := NewError(InternalError, "encoding failed", 500, "req_123", nil, encErr)
func NewError(errType ErrorType, message string, code int, requestID string, details map[string]interface{}, err error) *WingmanError {
	return &WingmanError{
		Type:      errType,
		Message:   message,
		Code:      code,
		RequestID: requestID,
		Details:   details,
		err:       err,
	}
}

// NewValidationError creates a validation error with appropriate defaults.
// Use this for any request validation failures, such as:
//   - A required field missing for the selected mode
//   - An unsupported mode value
//   - An image attachment with a disallowed MIME type
//
// Example:
//
//	err := NewValidationError("req_123", "rewrite mode requires a draft", map[string]interface{}{
//	    "field": "draft",
//	    "error": "required",
//	})
func NewValidationError(requestID, message string, validationDetails map[string]interface{}) *WingmanError {
	return &WingmanError{
		Type:      ValidationError,
		Message:   message,
		Code:      http.StatusBadRequest,
		RequestID: requestID,
		Details:   validationDetails,
	}
}

// NewProviderError creates a provider error with appropriate defaults.
// Use this when a generation provider fails, such as:
//   - Transport or auth failures
//   - A structurally empty successful response
//   - An open circuit breaker refusing the call
//
// Example:
//
//	err := NewProviderError("req_123", "gemini returned empty response", genErr)
func NewProviderError(requestID string, message string, err error) *WingmanError {
	return &WingmanError{
		Type:      ProviderError,
		Message:   message,
		Code:      http.StatusBadGateway,
		RequestID: requestID,
		err:       err,
	}
}

// NewNormalizationError creates an error for provider output that could not
// be coerced into the {"reply": ...} shape. The original raw model output is
// preserved in the details for diagnostics, never discarded.
//
// Example:
//
//	err := NewNormalizationError("req_123", InvalidFormat, rawText, parseErr)
func NewNormalizationError(requestID string, kind NormalizationKind, rawOutput string, err error) *WingmanError {
	return &WingmanError{
		Type:      NormalizationError,
		Message:   "Provider response could not be normalized",
		Code:      http.StatusInternalServerError,
		RequestID: requestID,
		Details: map[string]interface{}{
			"kind":       string(kind),
			"raw_output": rawOutput,
		},
		err: err,
	}
}

// NewTimeoutError creates a timeout error for a generation call that
// exceeded its configured deadline.
//
// Example:
//
//	err := NewTimeoutError("req_123", "30s", ctx.Err())
func NewTimeoutError(requestID string, timeout string, err error) *WingmanError {
	return &WingmanError{
		Type:      TimeoutError,
		Message:   "Generation request timed out",
		Code:      http.StatusGatewayTimeout,
		RequestID: requestID,
		Details: map[string]interface{}{
			"timeout": timeout,
		},
		err: err,
	}
}

// NewRateLimitError creates a rate limit error with appropriate defaults.
// Use this when a client has exceeded their quota or rate limits.
//
// Example:
//
//	err := NewRateLimitError("req_123", 30)
func NewRateLimitError(requestID string, retryAfter int) *WingmanError {
	return &WingmanError{
		Type:      RateLimitError,
		Message:   "Rate limit exceeded",
		Code:      http.StatusTooManyRequests,
		RequestID: requestID,
		Details: map[string]interface{}{
			"retry_after": retryAfter,
		},
	}
}

// NewInternalError creates an internal server error with appropriate defaults.
// Use this for unexpected errors that are not covered by other error types:
//   - Panics
//   - Response encoding failures
//   - Unexpected system failures
//
// Example:
//
//	err := NewInternalError("req_123", encErr)
func NewInternalError(requestID string, err error) *WingmanError {
	return &WingmanError{
		Type:      InternalError,
		Message:   "An internal error occurred",
		Code:      http.StatusInternalServerError,
		RequestID: requestID,
		err:       err,
	}
}
