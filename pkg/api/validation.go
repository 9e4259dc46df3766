package api

import (
	"net/mail"
	"time"
	"unicode/utf8"
)

const (
	// MinPasswordLength matches the registration contract: shorter
	// passwords are rejected before hashing.
	MinPasswordLength = 6

	// MaxNameLength bounds free-text fields (names, titles) to keep
	// payloads sane.
	MaxNameLength = 255
)

// RegisterRequest is the payload for POST /auth/register.
type RegisterRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Password  string `json:"password"`
}

// Validate returns an *APIError describing the first validation failure,
// or nil if the request is valid. The message is the generic payload
// error: field-level details are not leaked on this surface.
func (r *RegisterRequest) Validate() *APIError {
	if r.FirstName == "" || utf8.RuneCountInString(r.FirstName) > MaxNameLength {
		return NewInvalidRequestError("Invalid payload")
	}
	if r.LastName == "" || utf8.RuneCountInString(r.LastName) > MaxNameLength {
		return NewInvalidRequestError("Invalid payload")
	}
	if !validEmail(r.Email) {
		return NewInvalidRequestError("Invalid payload")
	}
	if len(r.Password) < MinPasswordLength {
		return NewInvalidRequestError("Invalid payload")
	}
	return nil
}

// LoginRequest is the payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate checks the login payload.
func (r *LoginRequest) Validate() *APIError {
	if !validEmail(r.Email) {
		return NewInvalidRequestError("Invalid payload")
	}
	if r.Password == "" {
		return NewInvalidRequestError("Invalid payload")
	}
	return nil
}

// CreateListRequest is the payload for POST /lists.
type CreateListRequest struct {
	Name string `json:"name"`
}

// Validate checks the list creation payload.
func (r *CreateListRequest) Validate() *APIError {
	if r.Name == "" || utf8.RuneCountInString(r.Name) > MaxNameLength {
		return NewInvalidRequestError("Invalid payload")
	}
	return nil
}

// CreateTaskRequest is the payload for POST /lists/{id}/tasks. DueDate is
// an RFC 3339 timestamp string, parsed during validation.
type CreateTaskRequest struct {
	Title   string  `json:"title"`
	DueDate string  `json:"dueDate"`
	Details *string `json:"details,omitempty"`

	// Due holds the parsed DueDate after a successful Validate.
	Due time.Time `json:"-"`
}

// Validate checks the task creation payload and parses the due date.
func (r *CreateTaskRequest) Validate() *APIError {
	if r.Title == "" || utf8.RuneCountInString(r.Title) > MaxNameLength {
		return NewInvalidRequestError("Invalid payload")
	}
	due, err := time.Parse(time.RFC3339, r.DueDate)
	if err != nil {
		return NewInvalidRequestError("Invalid payload")
	}
	r.Due = due
	return nil
}

// UpdateTaskRequest is the payload for PATCH /tasks/{id}.
type UpdateTaskRequest struct {
	Status TaskStatus `json:"status"`
}

// Validate checks the task update payload.
func (r *UpdateTaskRequest) Validate() *APIError {
	if !r.Status.Valid() {
		return NewInvalidRequestError("Invalid payload")
	}
	return nil
}

// validEmail reports whether addr parses as a bare RFC 5322 address.
func validEmail(addr string) bool {
	if addr == "" || len(addr) > MaxNameLength {
		return false
	}
	parsed, err := mail.ParseAddress(addr)
	if err != nil {
		return false
	}
	// Reject display-name forms like "Alice <a@x.com>".
	return parsed.Address == addr
}
