package generation

import "context"

// Image is the raw output of an image generation call. Data is not encoded.
type Image struct {
	Data     []byte
	MIMEType string
}

// TextGenerator produces free text from a prompt.
type TextGenerator interface {
	// GenerateText returns the model's text for prompt. An empty response is
	// reported as ErrGenerationFailed.
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// ImageGenerator renders an image from a description.
type ImageGenerator interface {
	// GenerateImage renders description at the given aspect ratio ("16:9",
	// "1:1", ...). A response without image bytes is ErrGenerationFailed.
	GenerateImage(ctx context.Context, description, aspectRatio string) (*Image, error)
}

// Generator is the full capability the carousel orchestrator depends on. It
// is the boundary between the application core and external AI services.
type Generator interface {
	TextGenerator
	ImageGenerator
}
