package services

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is against these to classify a service error.
var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrNotFound           = errors.New("not found")
	ErrAlreadyLiked       = errors.New("already liked")
	ErrConflict           = errors.New("conflict")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrInvariantViolation = errors.New("invariant violation")
	ErrUnavailable        = errors.New("unavailable")
)

// Error is a classified service error. Msg is safe to show to clients for the
// client-side kinds; Err carries the underlying cause, if any.
type Error struct {
	Kind error
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As
func (e *Error) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// IsClientError reports whether err was caused by the request rather than the server
func IsClientError(err error) bool {
	for _, kind := range []error{
		ErrInvalidArgument, ErrNotFound, ErrAlreadyLiked, ErrConflict, ErrUnauthorized, ErrForbidden,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// Message returns the client facing message of a service error
func Message(err error) string {
	var svcErr *Error
	if errors.As(err, &svcErr) {
		return svcErr.Msg
	}
	return err.Error()
}

func invalidArgument(msg string) error {
	return &Error{Kind: ErrInvalidArgument, Msg: msg}
}

func notFound(msg string) error {
	return &Error{Kind: ErrNotFound, Msg: msg}
}

func alreadyLiked() error {
	return &Error{Kind: ErrAlreadyLiked, Msg: "You've already liked this user"}
}

func conflict(msg string) error {
	return &Error{Kind: ErrConflict, Msg: msg}
}

func unauthorized(msg string) error {
	return &Error{Kind: ErrUnauthorized, Msg: msg}
}

func forbidden(msg string) error {
	return &Error{Kind: ErrForbidden, Msg: msg}
}

func invariant(msg string, err error) error {
	return &Error{Kind: ErrInvariantViolation, Msg: msg, Err: err}
}

func unavailable(msg string, err error) error {
	return &Error{Kind: ErrUnavailable, Msg: msg, Err: err}
}
