package ask

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned when request validation fails. Detected
	// before any repository or provider call.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNotFound is returned when the scope target does not exist for the
	// requesting owner. Distinct from a scope that resolves to zero notes,
	// which is a valid empty result.
	ErrNotFound = errors.New("not found")
)

// ValidationError is a validation failure tied to a request field.
// It matches ErrInvalidInput under errors.Is.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
