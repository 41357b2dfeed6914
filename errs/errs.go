package errs

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error so handlers can map it to an HTTP status without
// inspecting store internals.
type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindConflict
	// KindResourceInconsistent marks a data-integrity violation, e.g. a
	// resource whose owner set is empty. Surfaced to clients as not found.
	KindResourceInconsistent
	// KindPartialLink marks a multi-step update that committed its store
	// mutation but failed a follow-up side effect.
	KindPartialLink
)

// Error is a kinded error with a client-safe message. The wrapped cause is
// logged server-side and never returned to the caller.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New creates a kinded error with a client-safe message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap attaches a cause to a kinded error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// BadRequest creates a validation error.
func BadRequest(message string) *Error { return New(KindBadRequest, message) }

// Forbidden creates an authorization denial.
func Forbidden(message string) *Error { return New(KindForbidden, message) }

// NotFound creates a missing-resource error.
func NotFound(message string) *Error { return New(KindNotFound, message) }

// Internal wraps an unclassified failure.
func Internal(message string, err error) *Error { return Wrap(KindInternal, message, err) }

// KindOf extracts the kind of err, defaulting to KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// MessageOf extracts the client-safe message of err.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return "Internal server error"
}

// HTTPStatus maps an error kind to an HTTP status code.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound, KindResourceInconsistent:
		// Inconsistent resources are reported as not found, matching the
		// read path's behavior for unresolvable owner sets.
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
