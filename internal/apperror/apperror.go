// Package apperror defines the error taxonomy shared by the repository,
// service and handler layers.
//
// Every user-visible failure is an *AppError wrapping one of the sentinel
// errors below. Callers test the category with errors.Is, and the HTTP layer
// maps each category to a status code in handler/response.go. Errors that are
// not an *AppError are storage or transport failures and are reported as an
// opaque 500.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")

	// ErrOwnerUnknown means a write referenced an owner row that does not
	// exist, even after the owner was ensured. Clients should re-authenticate.
	ErrOwnerUnknown = errors.New("owner not recognized")
)

type AppError struct {
	Err     error  // sentinel category
	Message string // human-readable error message
	Field   string // optional: field causing the error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s %q not found", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(resource, id string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: fmt.Sprintf("%s %q already exists", resource, id),
	}
}

// Forbidden returns an AppError indicating the caller lacks permission.
// HTTP handlers map this to 403 Forbidden.
func Forbidden(message string) *AppError {
	return &AppError{
		Err:     ErrForbidden,
		Message: message,
	}
}

// Unauthorized returns an AppError for requests without a valid session.
// HTTP handlers map this to 401 Unauthorized.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// OwnerNotRecognized reports a foreign-key violation on the owning user.
func OwnerNotRecognized(ownerID string) *AppError {
	return &AppError{
		Err:     ErrOwnerUnknown,
		Message: fmt.Sprintf("user %q not found in database, please log in again", ownerID),
	}
}
