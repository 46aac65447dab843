// Package apperr provides typed domain errors for the application.
// Services return these errors and the HTTP layer maps each Kind to a
// status code, so callers never inspect error strings.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind categorizes a domain error for transport mapping.
type Kind int

const (
	// KindUnknown is the default when no kind was assigned.
	KindUnknown Kind = iota
	// KindNotFound indicates a referenced entity does not exist.
	KindNotFound
	// KindValidation indicates malformed or rejected input.
	KindValidation
	// KindConflict indicates the request clashes with current state
	// (illegal status transition, overpayment, blocked deletion).
	KindConflict
	// KindForbidden indicates the actor may not perform the action.
	KindForbidden
	// KindUnauthorized indicates missing or failed authentication,
	// including a failed access-code check.
	KindUnauthorized
	// KindBadRequest indicates a request the server cannot interpret.
	KindBadRequest
	// KindGone indicates an expired or exhausted resource.
	KindGone
	// KindRateLimited indicates the caller exceeded an attempt budget.
	KindRateLimited
	// KindInternal indicates an unexpected infrastructure failure.
	KindInternal
)

// Error is a domain error carrying a Kind.
type Error struct {
	Kind    Kind
	Message string
	Op      string // operation that failed, optional
	Err     error  // wrapped cause, optional
}

func (e *Error) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	return e.Message
}

// Unwrap exposes the cause for errors.Is / errors.As.
func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the error kind to an HTTP status code.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindBadRequest:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindForbidden:
		return http.StatusForbidden
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindGone:
		return http.StatusGone
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusBadRequest
	}
}

// New creates a domain error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates a domain error that wraps a cause.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// WithOp sets the failing operation on the error and returns it.
func (e *Error) WithOp(op string) *Error {
	e.Op = op
	return e
}

// Convenience constructors for the kinds services use directly.

// NotFound creates a not-found error.
func NotFound(message string) *Error { return New(KindNotFound, message) }

// Validation creates a validation error.
func Validation(message string) *Error { return New(KindValidation, message) }

// Conflict creates a state-conflict error.
func Conflict(message string) *Error { return New(KindConflict, message) }

// Forbidden creates a forbidden error.
func Forbidden(message string) *Error { return New(KindForbidden, message) }

// Unauthorized creates an unauthorized error.
func Unauthorized(message string) *Error { return New(KindUnauthorized, message) }

// BadRequest creates a bad-request error.
func BadRequest(message string) *Error { return New(KindBadRequest, message) }

// Gone creates a gone error for expired or exhausted resources.
func Gone(message string) *Error { return New(KindGone, message) }

// RateLimited creates a rate-limited error.
func RateLimited(message string) *Error { return New(KindRateLimited, message) }

// Internal creates an internal error.
func Internal(message string) *Error { return New(KindInternal, message) }

// GetKind extracts the Kind from an error chain.
// Returns KindUnknown for errors that are not *Error.
func GetKind(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return GetKind(err) == kind
}
