// Package apperror carries the error taxonomy shared by services and handlers.
package apperror

import (
	"errors"
	"net/http"
)

type Kind int

const (
	KindInternal Kind = iota
	KindValidation
	KindNotFound
	KindConflict
	KindAuth
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindAuth:
		return "auth"
	case KindUpstream:
		return "upstream"
	default:
		return "internal"
	}
}

// Error is a classified failure. Message is safe to show to API clients;
// Err keeps the underlying cause for logs and errors.Is checks.
type Error struct {
	Kind    Kind
	Message string
	Status  int
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func newErr(kind Kind, status int, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Status: status, Err: cause}
}

func Validation(msg string) *Error { return newErr(KindValidation, http.StatusBadRequest, msg, nil) }

func NotFound(msg string, cause error) *Error {
	return newErr(KindNotFound, http.StatusNotFound, msg, cause)
}

// Conflict covers duplicate identities; the public API reports them as 400.
func Conflict(msg string, cause error) *Error {
	return newErr(KindConflict, http.StatusBadRequest, msg, cause)
}

func Auth(msg string, cause error) *Error { return newErr(KindAuth, http.StatusBadRequest, msg, cause) }

// Upstream wraps a payment or notification provider failure. status is 400
// when the provider rejected the request and 500 when it could not be reached.
func Upstream(status int, msg string, cause error) *Error {
	return newErr(KindUpstream, status, msg, cause)
}

func Internal(msg string, cause error) *Error {
	return newErr(KindInternal, http.StatusInternalServerError, msg, cause)
}

// As returns the classified error in err's chain, if any.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) {
		return ae, true
	}
	return nil, false
}

// StatusOf maps err to an HTTP status, defaulting to 500.
func StatusOf(err error) int {
	if ae, ok := As(err); ok && ae.Status != 0 {
		return ae.Status
	}
	return http.StatusInternalServerError
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	ae, ok := As(err)
	return ok && ae.Kind == kind
}
