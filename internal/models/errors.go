package models

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	// ErrInvalidInput indicates a malformed ticket (wrong count, duplicate or out-of-range number)
	ErrInvalidInput = errors.New("invalid input")

	// ErrMissingData indicates a record lacks the sales or winner data needed for scoring
	ErrMissingData = errors.New("missing data")

	// ErrSchemaMismatch indicates a classifier column is absent from the engineered features
	ErrSchemaMismatch = errors.New("schema mismatch")

	ErrNotFound     = errors.New("record not found")
	ErrDuplicateKey = errors.New("duplicate key violation")
)

// ValidationError describes why a single field failed validation.
// It matches ErrInvalidInput with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError creates a validation error for a field
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is reports whether target is ErrInvalidInput
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}
