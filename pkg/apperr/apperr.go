// Package apperr defines the error kinds shared by the service layer.
//
// Services declare their own sentinel errors with New so that callers can
// match either the precise rule (errors.Is(err, scheduling.ErrDateInPast)) or
// the kind (errors.Is(err, apperr.ErrValidation)).
package apperr

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrValidation    = errors.New("validation failed")
	ErrConflict      = errors.New("conflict")
	ErrStateConflict = errors.New("invalid state transition")
	ErrForbidden     = errors.New("forbidden")
)

// Error is a sentinel carrying a user-facing message and its kind.
type Error struct {
	kind error
	msg  string
}

func (e *Error) Error() string { return e.msg }

func (e *Error) Unwrap() error { return e.kind }

// Kind returns the kind sentinel the error belongs to.
func (e *Error) Kind() error { return e.kind }

func New(kind error, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

func NotFound(msg string) *Error      { return New(ErrNotFound, msg) }
func Validation(msg string) *Error    { return New(ErrValidation, msg) }
func Conflict(msg string) *Error      { return New(ErrConflict, msg) }
func StateConflict(msg string) *Error { return New(ErrStateConflict, msg) }
func Forbidden(msg string) *Error     { return New(ErrForbidden, msg) }

// KindOf reports the kind of err, or nil when err carries none (an internal
// failure).
func KindOf(err error) error {
	for _, k := range []error{ErrNotFound, ErrValidation, ErrConflict, ErrStateConflict, ErrForbidden} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}
