// Package apperr defines the closed set of failure kinds the service layer reports
// and how each one surfaces over HTTP.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error.
type Kind string

const (
	KindInvalidEmailFormat                Kind = "InvalidEmailFormat"
	KindInvalidPassword                   Kind = "InvalidPassword"
	KindInvalidJwtToken                   Kind = "InvalidJwtToken"
	KindIllegalArgument                   Kind = "IllegalArgument"
	KindEmailAlreadyExists                Kind = "EmailAlreadyExists"
	KindTaskAlreadyExists                 Kind = "TaskAlreadyExists"
	KindTaskNotFound                      Kind = "TaskNotFound"
	KindAccessDenied                      Kind = "AccessDenied"
	KindAuthenticationCredentialsNotFound Kind = "AuthenticationCredentialsNotFound"
	KindInsufficientAuthentication        Kind = "InsufficientAuthentication"
	KindNoHandlerFound                    Kind = "NoHandlerFound"
	KindInternal                          Kind = "InternalServerError"
)

// Status maps the kind to its HTTP status code.
func (k Kind) Status() int {
	switch k {
	case KindInvalidEmailFormat, KindInvalidPassword, KindInvalidJwtToken, KindIllegalArgument:
		return http.StatusBadRequest
	case KindEmailAlreadyExists, KindTaskAlreadyExists:
		return http.StatusConflict
	case KindTaskNotFound, KindNoHandlerFound:
		return http.StatusNotFound
	case KindAccessDenied:
		return http.StatusForbidden
	case KindAuthenticationCredentialsNotFound, KindInsufficientAuthentication:
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// Error is a classified failure. Message is safe to show to API clients; Err is not.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap classifies err under kind, keeping it as the cause.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

// Internal wraps an unexpected failure. The client only ever sees the generic message.
func Internal(err error) *Error {
	return &Error{Kind: KindInternal, Message: "an unexpected error occurred", Err: err}
}

// KindOf reports the kind of err, or KindInternal when err is not classified.
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

// From returns err as an *Error, classifying unknown errors as internal.
func From(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}
