package domain

import (
	"errors"
	"fmt"
)

// Error kinds. Callers match on them with errors.Is.
var (
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("bad request")
	ErrNotAvailable = errors.New("not available")
	ErrConflict     = errors.New("conflict")
)

// Error is a domain rule violation with a human readable message and,
// for input problems, the name of the offending field.
type Error struct {
	Kind    error
	Message string
	Field   string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func newError(kind error, field, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Field: field}
}

func NotFound(format string, args ...interface{}) error {
	return newError(ErrNotFound, "", format, args...)
}

func BadRequest(format string, args ...interface{}) error {
	return newError(ErrBadRequest, "", format, args...)
}

// BadField reports invalid input in the named field.
func BadField(field, format string, args ...interface{}) error {
	return newError(ErrBadRequest, field, format, args...)
}

func NotAvailable(format string, args ...interface{}) error {
	return newError(ErrNotAvailable, "", format, args...)
}

func Conflict(format string, args ...interface{}) error {
	return newError(ErrConflict, "", format, args...)
}

// FieldOf returns the field attached to err, if any.
func FieldOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Field
	}
	return ""
}
