package carousel

import "github.com/phrazzld/carousel-api/internal/store"

// DefaultMaxConcurrentImages bounds in-flight image calls when no option is given.
const DefaultMaxConcurrentImages = 4

// Option configures a Service.
type Option func(*Service)

// WithMaxConcurrentImages bounds the image calls in flight for one request.
// Values below 1 mean sequential dispatch.
func WithMaxConcurrentImages(n int) Option {
	return func(s *Service) {
		if n < 1 {
			n = 1
		}
		s.maxConcurrentImages = n
	}
}

// WithImageDescriptionRefinement enables one extra text call per image
// element whose description is missing from the combined response.
func WithImageDescriptionRefinement(enabled bool) Option {
	return func(s *Service) {
		s.refineDescriptions = enabled
	}
}

// WithRunStore records every pass in runs. A nil store keeps the no-op default.
func WithRunStore(runs store.RunStore) Option {
	return func(s *Service) {
		if runs != nil {
			s.runs = runs
		}
	}
}
