package generation

import (
	"context"
	"fmt"
)

// Unavailable is a Generator that fails every call with ErrUpstreamUnavailable.
// The server runs with it when no API key is configured so that requests get a
// clear "service unavailable" answer instead of the process refusing to start.
type Unavailable struct {
	// Reason is included in the returned error.
	Reason string
}

// GenerateText always fails with ErrUpstreamUnavailable.
func (u Unavailable) GenerateText(_ context.Context, _ string) (string, error) {
	return "", u.err()
}

// GenerateImage always fails with ErrUpstreamUnavailable.
func (u Unavailable) GenerateImage(_ context.Context, _, _ string) (*Image, error) {
	return nil, u.err()
}

func (u Unavailable) err() error {
	if u.Reason == "" {
		return ErrUpstreamUnavailable
	}
	return fmt.Errorf("%w: %s", ErrUpstreamUnavailable, u.Reason)
}

var _ Generator = Unavailable{}
