// Package gemini provides the generation.Generator implementation backed by
// Google's Gemini API through the google.golang.org/genai client.
//
// This package is an infrastructure adapter in the hexagonal architecture,
// connecting the carousel pipeline to Google's generative models without
// exposing the details of the external service to the core application.
//
// Key components:
//
// 1. GeminiGenerator:
//   - Text through Models.GenerateContent
//   - Images either through Models.GenerateContent with an IMAGE response
//     modality ("content" mode) or through Models.GenerateImages ("imagen" mode)
//   - One upstream attempt per call, bounded by a per-operation timeout
//
// 2. NewGenerator:
//   - Builds a GeminiGenerator when an API key is configured
//   - Falls back to generation.Unavailable when it is not
//
// 3. Error Handling:
//   - Rejected credentials and connection failures become generation.ErrUpstreamUnavailable
//   - Safety blocks become generation.ErrContentBlocked
//   - Everything else, timeouts included, becomes generation.ErrGenerationFailed
package gemini
