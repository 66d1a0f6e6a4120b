package domain

import "errors"

// Common domain errors used across the application.
var (
	// ErrValidation is returned when a domain entity fails validation.
	// This is often wrapped with a more specific error message.
	ErrValidation = errors.New("validation failed")

	// ErrInvalidElementID is returned when an element ID cannot be used as a
	// line-anchored key (empty, padded with whitespace, or containing a colon
	// or line break).
	ErrInvalidElementID = errors.New("invalid element ID")

	// ErrInvalidElementKind is returned for an element kind other than text or image.
	ErrInvalidElementKind = errors.New("invalid element kind")
)

// ValidationError names the request field that failed validation.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// NewValidationError creates a ValidationError for field wrapping err.
// A nil err wraps ErrValidation.
func NewValidationError(field, message string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{Field: field, Message: message, Err: err}
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + " " + e.Message
}

// Unwrap returns the wrapped error. ErrValidation always matches.
func (e *ValidationError) Unwrap() []error {
	if e.Err == ErrValidation {
		return []error{ErrValidation}
	}
	return []error{e.Err, ErrValidation}
}
