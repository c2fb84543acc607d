package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrConflict      = errors.New("conflict")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// NewValidationErrors creates a ValidationError from multiple field errors.
func NewValidationErrors(errs []FieldError) *ValidationError {
	return &ValidationError{Errors: errs}
}

// DuplicateError reports that an entity already exists locally.
// Existing holds the matched row (*Continent, *Country or *City) and may be nil
// when a concurrent insert won the race and the row could not be re-read.
type DuplicateError struct {
	Kind     EntityKind
	Key      IdentityKey
	Existing any
}

func (e *DuplicateError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s already exists", e.Kind)
	}
	return fmt.Sprintf("%s already exists (matched by %s)", e.Kind, e.Key)
}

func (e *DuplicateError) Unwrap() error { return ErrAlreadyExists }

// NewDuplicateError creates a DuplicateError for the given match.
func NewDuplicateError(kind EntityKind, key IdentityKey, existing any) *DuplicateError {
	return &DuplicateError{Kind: kind, Key: key, Existing: existing}
}
