// Package domain contains the carousel value types shared by the prompt
// composer, the response extractor, the orchestrator and the HTTP boundary:
// the request tree (carousel, slides, elements) and the per-slide results.
//
// All values are created for a single generation pass and never shared
// between requests.
package domain
