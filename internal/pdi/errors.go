package pdi

import (
	"errors"
	"fmt"
)

var (
	ErrOutOfBounds     = errors.New("bit range exceeds buffer")
	ErrInvalidWidth    = errors.New("invalid bit width")
	ErrTypeMismatch    = errors.New("semantic type incompatible with encoding")
	ErrUnknownEncoding = errors.New("unknown encoding")
	ErrNoOutput        = errors.New("no output switch set")
	ErrInvalidBuffer   = errors.New("invalid process data buffer")
	ErrNoSpec          = errors.New("no device specification")
)

// Kind returns the short name of a decode error, as published in DecodedField.Status.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrOutOfBounds):
		return "OutOfBounds"
	case errors.Is(err, ErrInvalidWidth):
		return "InvalidWidth"
	case errors.Is(err, ErrTypeMismatch):
		return "TypeMismatch"
	case errors.Is(err, ErrUnknownEncoding):
		return "UnknownEncoding"
	case errors.Is(err, ErrNoOutput):
		return "ConfigurationError"
	case errors.Is(err, ErrInvalidBuffer):
		return "InvalidBuffer"
	default:
		return "Error"
	}
}

// FieldError is a failure local to one field of a decode call.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %q: %v", e.Field, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Kind returns the short error kind of the underlying failure.
func (e *FieldError) Kind() string {
	return Kind(e.Err)
}
