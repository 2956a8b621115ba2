package models

import "net/http"

type ErrorKind string // Coarse classification used by handlers and clients

const (
	KindValidation    ErrorKind = "validation"
	KindAuthorization ErrorKind = "authorization"
	KindNotFound      ErrorKind = "not_found"
	KindTransient     ErrorKind = "transient"
	KindPartial       ErrorKind = "partial_completion"
)

// ErrorResponse describes an expected failure with an HTTP status, a kind and
// an actionable message.
type ErrorResponse struct {
	StatusCode int       `json:"-"`
	Kind       ErrorKind `json:"kind,omitempty"`
	Message    string    `json:"reason"`
}

// NewErrorResponse creates a new error with a status code and message.
func NewErrorResponse(statusCode int, message string) *ErrorResponse {
	return &ErrorResponse{
		StatusCode: statusCode,
		Message:    message}
}

// NewValidationError reports missing or invalid user-correctable input.
func NewValidationError(message string) *ErrorResponse {
	return &ErrorResponse{StatusCode: http.StatusBadRequest, Kind: KindValidation, Message: message}
}

// NewAuthorizationError reports a role or permission mismatch.
func NewAuthorizationError(message string) *ErrorResponse {
	return &ErrorResponse{StatusCode: http.StatusForbidden, Kind: KindAuthorization, Message: message}
}

// NewNotFoundError reports an absent referenced entity.
func NewNotFoundError(message string) *ErrorResponse {
	return &ErrorResponse{StatusCode: http.StatusNotFound, Kind: KindNotFound, Message: message}
}

// NewTransientError reports a failed integration that may succeed on retry.
func NewTransientError(message string) *ErrorResponse {
	return &ErrorResponse{StatusCode: http.StatusServiceUnavailable, Kind: KindTransient, Message: message}
}

// NewPartialCompletionError reports a multi-step write that failed after its
// first step; the operation is safe to retry with the same id.
func NewPartialCompletionError(message string) *ErrorResponse {
	return &ErrorResponse{StatusCode: http.StatusConflict, Kind: KindPartial, Message: message}
}

// Error implements the error interface.
func (e *ErrorResponse) Error() string {
	return e.Message
}
