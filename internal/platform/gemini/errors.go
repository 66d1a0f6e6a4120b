package gemini

import "errors"

// Error definitions for the gemini package.
var (
	// ErrEmptyPrompt is returned when a text prompt or image description is blank.
	ErrEmptyPrompt = errors.New("prompt cannot be empty")
)
