// Package apperror defines the error taxonomy shared by the server and the
// terminal client.
//
// Every error that crosses a layer boundary is either a plain wrapped error
// (an unexpected failure) or an *AppError carrying one of the sentinels
// below. Callers branch with errors.Is on the sentinel and read the
// human-readable Message for display.
//
//   - ErrValidation: input broke a declared constraint, nothing was sent anywhere
//   - ErrRemote:     the backend rejected the call or could not be reached
//   - ErrNotFound / ErrConflict / ErrForbidden / ErrUnauthorized: server-side outcomes
package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("Validation Error")
	ErrConflict     = errors.New("conflict")
	ErrForbidden    = errors.New("forbidden")
	ErrUnauthorized = errors.New("unauthorized")
	ErrRemote       = errors.New("remote error")
)

type AppError struct {
	Err     error  // sentinel kind
	Message string // Human-readable error message
	Field   string // Optional: field causing the error
	Status  int    // Optional: HTTP status reported by the backend (remote errors only)
}

func (e *AppError) Error() string {
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is makes every error the backend answered with a status a remote error,
// whatever its kind. A rejected session is both ErrUnauthorized and ErrRemote.
func (e *AppError) Is(target error) bool {
	return target == ErrRemote && e.Status != 0
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

// ValidationFailed reports the first violated rule. The message is shown to
// the user as-is, so it should read like a form hint.
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
		Message: fmt.Sprintf("%s conflict with id %s", resource, id),
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

// Unauthorized means no valid session (or bad credentials). Maps to 401.
func Unauthorized(message string) *AppError {
	return &AppError{
		Err:     ErrUnauthorized,
		Message: message,
	}
}

// Remote wraps a failure reported by (or on the way to) the backend.
// message is kept verbatim for diagnostics; status is 0 when the request
// never got a response.
func Remote(status int, message string) *AppError {
	return &AppError{
		Err:     ErrRemote,
		Message: message,
		Status:  status,
	}
}
