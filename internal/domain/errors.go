// Package domain defines the core business entities and errors.
package domain

import (
	"errors"
	"fmt"
)

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidID is returned when an ID is malformed or invalid.
	ErrInvalidID = errors.New("invalid ID")

	// ErrInvalidQuality is returned when a quality rating is outside [0,5].
	ErrInvalidQuality = errors.New("quality rating must be between 0 and 5")

	// ErrInvalidResponseTime is returned when a response time is negative.
	ErrInvalidResponseTime = errors.New("response time cannot be negative")

	// ErrInvalidConfidence is returned when a confidence level is outside [0,1].
	ErrInvalidConfidence = errors.New("confidence level must be between 0 and 1")

	// ErrInvalidHints is returned when a hints-used count is negative.
	ErrInvalidHints = errors.New("hints used cannot be negative")
)

// ValidationError carries the field that failed validation alongside the
// underlying sentinel, so API handlers can report a specific reason while
// errors.Is checks still work against the sentinels above.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s %s", e.Field, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new ValidationError for the given field.
func NewValidationError(field, message string, err error) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}
