// Package apperr defines the sentinel error kinds shared across the
// service and handler layers. Callers match them with errors.Is; handlers
// translate each kind into an HTTP status and a stable JSON body.
package apperr

import (
	"errors"
	"net/http"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrUpstream        = errors.New("upstream failure")
)

// Error carries a client-safe message alongside a sentinel kind and an
// optional internal cause. The cause is preserved for logs and errors.Is
// chains but never exposed through Message.
type Error struct {
	kind  error
	msg   string
	cause error
}

// E creates an Error of the given kind with a client-safe message.
func E(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// Wrap attaches an internal cause to a client-safe message.
func Wrap(kind error, msg string, cause error) *Error {
	return &Error{kind: kind, msg: msg, cause: cause}
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

func (e *Error) Unwrap() []error {
	if e.cause != nil {
		return []error{e.kind, e.cause}
	}
	return []error{e.kind}
}

// Message returns the client-safe message for an error, or a generic
// fallback for unexpected errors so internals never leak into responses.
func Message(err error) string {
	var ae *Error
	if errors.As(err, &ae) {
		return ae.msg
	}
	return "server error"
}

// Status maps an error to its HTTP status code. Duplicate-unique-field
// conflicts map to 400; clients treat them as input errors.
func Status(err error) int {
	switch {
	case errors.Is(err, ErrValidation), errors.Is(err, ErrConflict):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
