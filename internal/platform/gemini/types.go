package gemini

import (
	"context"

	"google.golang.org/genai"
)

// modelsAPI is the subset of *genai.Models used by GeminiGenerator.
type modelsAPI interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)

	GenerateImages(
		ctx context.Context,
		model string,
		prompt string,
		config *genai.GenerateImagesConfig,
	) (*genai.GenerateImagesResponse, error)
}

var _ modelsAPI = (*genai.Models)(nil)
