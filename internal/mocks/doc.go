// Package mocks provides centralized mock implementations for testing.
//
// Mocks use function fields for each interface method and record their calls
// so tests can verify what was requested. They are safe for concurrent use,
// which matters for the carousel service because it issues image calls in
// parallel.
//
// Usage:
//
//	gen := &mocks.MockGenerator{
//	    GenerateTextFn: func(ctx context.Context, prompt string) (string, error) {
//	        return "headline: Wake Up To Artistry", nil
//	    },
//	}
//	svc, err := carousel.NewService(gen, logger)
package mocks
