package registration

import (
	"errors"
	"fmt"
)

// Registration errors, matched with errors.Is.
var (
	// ErrMissingField indicates a required field was empty.
	ErrMissingField = errors.New("missing required field")

	// ErrInvalidField indicates a field was present but unusable.
	ErrInvalidField = errors.New("invalid field")

	// ErrEmailTaken indicates an account of the same kind already uses the email.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCertificate indicates the uploaded certificate was rejected.
	ErrInvalidCertificate = errors.New("invalid certificate")
)

// FieldError names the form field a validation error belongs to.
type FieldError struct {
	Field string
	Err   error
}

// Error implements the error interface for FieldError.
func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.Field, e.Err)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *FieldError) Unwrap() error {
	return e.Err
}

func missing(field string) error {
	return &FieldError{Field: field, Err: ErrMissingField}
}

func invalid(field, reason string) error {
	return &FieldError{Field: field, Err: fmt.Errorf("%w: %s", ErrInvalidField, reason)}
}
