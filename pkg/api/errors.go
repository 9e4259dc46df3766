package api

import "fmt"

// ErrorType represents the category of an API error. The transport maps
// each type to an HTTP status code; the type itself is never sent to
// clients.
type ErrorType string

const (
	ErrorTypeUnauthorized   ErrorType = "unauthorized"
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeConflict       ErrorType = "conflict"
	ErrorTypeInvalidRequest ErrorType = "invalid_request"
	ErrorTypeServerError    ErrorType = "server_error"
	ErrorTypeModelError     ErrorType = "model_error"
)

// APIError is a categorized error carried from the core to the transport.
// Messages are deliberately generic for the auth and authz types: clients
// must not be able to tell which validation step failed, or whether a
// resource exists but belongs to someone else.
type APIError struct {
	Type    ErrorType
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// ErrorResponse is the wire format for every error body: a flat
// {"error": "<message>"} object.
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewUnauthorizedError creates an APIError for missing or invalid credentials.
func NewUnauthorizedError(message string) *APIError {
	return &APIError{Type: ErrorTypeUnauthorized, Message: message}
}

// NewNotFoundError creates an APIError for resources that are absent or
// not owned by the caller. The two cases share this single constructor so
// they stay indistinguishable on the wire.
func NewNotFoundError(message string) *APIError {
	return &APIError{Type: ErrorTypeNotFound, Message: message}
}

// NewConflictError creates an APIError for uniqueness violations.
func NewConflictError(message string) *APIError {
	return &APIError{Type: ErrorTypeConflict, Message: message}
}

// NewInvalidRequestError creates an APIError for malformed request payloads.
func NewInvalidRequestError(message string) *APIError {
	return &APIError{Type: ErrorTypeInvalidRequest, Message: message}
}

// NewServerError creates an APIError for internal failures.
func NewServerError(message string) *APIError {
	return &APIError{Type: ErrorTypeServerError, Message: message}
}

// NewModelError creates an APIError for text-generation backend failures.
func NewModelError(message string) *APIError {
	return &APIError{Type: ErrorTypeModelError, Message: message}
}
