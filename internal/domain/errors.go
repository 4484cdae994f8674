package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a store, review or user does not exist.
// Repositories translate the driver's no-document error into this value so
// callers never depend on the storage layer.
var ErrNotFound = errors.New("not found")

// ErrNotOwner is returned by AssertOwner when the acting user does not own
// the resource being mutated.
var ErrNotOwner = errors.New("you must own this resource to modify it")

// ValidationError reports a missing or malformed input field. Handlers
// surface it as a form error rather than a failure page.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for a single field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
