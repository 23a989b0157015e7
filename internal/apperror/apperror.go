package apperror

import (
	"errors"
	"fmt"
)

// Kind is the stable machine-readable category of an error.
type Kind string

const (
	KindValidation      Kind = "VALIDATION_ERROR"
	KindNotFound        Kind = "NOT_FOUND"
	KindForbidden       Kind = "FORBIDDEN"
	KindUnauthenticated Kind = "UNAUTHENTICATED"
	KindInternal        Kind = "INTERNAL_ERROR"
)

// Error carries a Kind, a message safe to show to the caller and an
// optional underlying cause.
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

func Validation(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Message: fmt.Sprintf(format, args...)}
}

func Unauthenticated(format string, args ...any) *Error {
	return &Error{Kind: KindUnauthenticated, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps an unexpected failure. The message shown to callers is
// generic; the cause stays reachable through errors.Unwrap for logging.
func Internal(err error, format string, args ...any) *Error {
	return &Error{Kind: KindInternal, Message: fmt.Sprintf(format, args...), Err: err}
}

// KindOf reports the Kind of err, or KindInternal when err is not an *Error.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err is an *Error of kind k.
func Is(err error, k Kind) bool {
	return err != nil && KindOf(err) == k
}

// MessageOf returns the caller-facing message of err.
func MessageOf(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Internal server error"
}
