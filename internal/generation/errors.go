package generation

import (
	"errors"
	"fmt"
)

// Common errors returned by generation implementations
var (
	// ErrInvalidConfig is returned when a generator is constructed with missing
	// or malformed settings such as an empty API key or model name.
	ErrInvalidConfig = errors.New("invalid generator configuration")

	// ErrUpstreamUnavailable is returned when the upstream service cannot be
	// used at all: no credentials are configured, or the credentials were rejected.
	ErrUpstreamUnavailable = errors.New("generation service unavailable")

	// ErrGenerationFailed is returned when an upstream call fails, times out,
	// or returns no usable text or image.
	ErrGenerationFailed = errors.New("content generation failed")

	// ErrContentBlocked is returned when the upstream refuses the request on
	// safety grounds. It matches ErrGenerationFailed with errors.Is.
	ErrContentBlocked = fmt.Errorf("%w: content blocked by safety filters", ErrGenerationFailed)
)
