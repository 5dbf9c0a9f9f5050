package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindBadRequest
	KindNotFound
	KindForbidden
)

// Error is the structured error every service returns. Handlers render it
// as {"error": {"message", "code", "details"}}.
type Error struct {
	Kind    Kind
	Message string
	Code    string
	Details map[string]string
}

func (e *Error) Error() string {
	return e.Message
}

// Status maps the error kind to an HTTP status code.
func (e *Error) Status() int {
	switch e.Kind {
	case KindBadRequest:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindForbidden:
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func BadRequest(format string, args ...any) *Error {
	return &Error{Kind: KindBadRequest, Code: "BAD_REQUEST", Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) *Error {
	return &Error{Kind: KindNotFound, Code: "NOT_FOUND", Message: fmt.Sprintf(format, args...)}
}

func Forbidden(format string, args ...any) *Error {
	return &Error{Kind: KindForbidden, Code: "FORBIDDEN", Message: fmt.Sprintf(format, args...)}
}

// WithDetails attaches per-field details and returns the same error.
func (e *Error) WithDetails(details map[string]string) *Error {
	e.Details = details
	return e
}

// From unwraps err into an *Error. Anything that is not one already is an
// internal error; its message is not exposed.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return &Error{Kind: KindInternal, Code: "INTERNAL", Message: "internal server error"}
}

func IsKind(err error, kind Kind) bool {
	var ae *Error
	return errors.As(err, &ae) && ae.Kind == kind
}
