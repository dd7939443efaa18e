// Package apperror defines the application's error taxonomy.
//
// Services return these domain errors; the HTTP layer translates them into
// status codes and machine-readable error codes. The taxonomy is small on
// purpose:
//
//	ErrUnauthorized → 401 — no authenticated principal on the request
//	ErrNotFound     → 404 — resource absent OR owned by someone else
//	ErrValidation   → 400 — input shape/constraint violation
//	ErrConflict     → 409 — uniqueness violation (duplicate email)
//
// OWNERSHIP IS NOT DISTINGUISHABLE FROM NON-EXISTENCE:
// When a caller asks for a resource that exists but belongs to another user,
// we return the exact same NotFound error as for a resource that doesn't
// exist at all. Returning a distinct "forbidden" would confirm to the caller
// that the ID is real, which lets an attacker enumerate other users' data.
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation error")
	ErrConflict     = errors.New("conflict")
)

// AppError carries a sentinel (for errors.Is checks) plus a human-readable
// message safe to show to the caller.
type AppError struct {
	Err     error  // sentinel from the list above
	Message string // human-readable error message
	Field   string // optional: field causing a validation error
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Unauthorized returns an AppError for a request with no valid principal.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// NotFound returns the uniform not-found error. Callers use it both for
// genuinely missing resources and for resources owned by a different user.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Field:   field,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Err:     ErrConflict,
		Message: message,
	}
}
