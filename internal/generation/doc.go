// Package generation defines the port between the carousel pipeline and the
// external generative models it depends on.
//
// The Generator interface combines a text capability and an image capability.
// Implementations live in platform packages (see internal/platform/gemini);
// Unavailable is the variant used when no credentials are configured.
//
// Every implementation makes exactly one upstream attempt per call and reports
// failures with the sentinel errors in errors.go, wrapped with detail.
package generation
