package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/phrazzld/carousel-api/internal/config"
	"github.com/phrazzld/carousel-api/internal/generation"
	"google.golang.org/genai"
)

// GeminiGenerator implements generation.Generator on top of the Gemini API.
// It is safe for concurrent use; the underlying client is shared read-only.
type GeminiGenerator struct {
	logger *slog.Logger
	config config.LLMConfig
	models modelsAPI
}

var _ generation.Generator = (*GeminiGenerator)(nil)

// NewGeminiGenerator validates cfg and creates a GeminiGenerator with its own
// genai client. Missing credentials or model names fail with
// generation.ErrInvalidConfig.
func NewGeminiGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*GeminiGenerator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if err := validateConfig(ctx, logger, cfg); err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return newGeminiGenerator(logger, cfg, client.Models), nil
}

func newGeminiGenerator(logger *slog.Logger, cfg config.LLMConfig, models modelsAPI) *GeminiGenerator {
	return &GeminiGenerator{
		logger: logger.With("component", "gemini_generator"),
		config: cfg,
		models: models,
	}
}

// GenerateText sends prompt to the configured text model and returns the
// concatenated text of the first candidate.
func (g *GeminiGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", fmt.Errorf("%w: %w", generation.ErrGenerationFailed, ErrEmptyPrompt)
	}

	ctx, cancel := withTimeout(ctx, g.config.TextTimeout)
	defer cancel()

	start := time.Now()
	g.logger.DebugContext(ctx, "Making Gemini text call",
		"model", g.config.TextModel,
		"prompt_length", len(prompt))

	resp, err := g.models.GenerateContent(ctx, g.config.TextModel, genai.Text(prompt), nil)
	if err != nil {
		err = classifyError(ctx, err)
		g.logger.ErrorContext(ctx, "Gemini text call failed",
			"model", g.config.TextModel,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err)
		return "", err
	}

	text, err := textFromResponse(resp)
	if err != nil {
		g.logger.WarnContext(ctx, "Gemini text response unusable",
			"model", g.config.TextModel,
			"error", err)
		return "", err
	}

	g.logger.DebugContext(ctx, "Gemini text call successful",
		"model", g.config.TextModel,
		"duration_ms", time.Since(start).Milliseconds(),
		"response_length", len(text))
	return text, nil
}

// GenerateImage renders description at aspectRatio with the configured image
// model, using the configured image mode.
func (g *GeminiGenerator) GenerateImage(
	ctx context.Context,
	description, aspectRatio string,
) (*generation.Image, error) {
	if strings.TrimSpace(description) == "" {
		return nil, fmt.Errorf("%w: %w", generation.ErrGenerationFailed, ErrEmptyPrompt)
	}

	ctx, cancel := withTimeout(ctx, g.config.ImageTimeout)
	defer cancel()

	start := time.Now()
	g.logger.DebugContext(ctx, "Making Gemini image call",
		"model", g.config.ImageModel,
		"mode", g.config.ImageMode,
		"aspect_ratio", aspectRatio)

	var (
		img *generation.Image
		err error
	)
	if g.config.ImageMode == config.ImageModeImagen {
		img, err = g.generateImagen(ctx, description, aspectRatio)
	} else {
		img, err = g.generateContentImage(ctx, description, aspectRatio)
	}
	if err != nil {
		g.logger.ErrorContext(ctx, "Gemini image call failed",
			"model", g.config.ImageModel,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err)
		return nil, err
	}

	g.logger.DebugContext(ctx, "Gemini image call successful",
		"model", g.config.ImageModel,
		"duration_ms", time.Since(start).Milliseconds(),
		"bytes", len(img.Data),
		"mime_type", img.MIMEType)
	return img, nil
}

func (g *GeminiGenerator) generateContentImage(
	ctx context.Context,
	description, aspectRatio string,
) (*generation.Image, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityImage)},
	}
	if aspectRatio != "" {
		cfg.ImageConfig = &genai.ImageConfig{AspectRatio: aspectRatio}
	}

	resp, err := g.models.GenerateContent(ctx, g.config.ImageModel, genai.Text(description), cfg)
	if err != nil {
		return nil, classifyError(ctx, err)
	}
	return imageFromContentResponse(resp)
}

func (g *GeminiGenerator) generateImagen(
	ctx context.Context,
	description, aspectRatio string,
) (*generation.Image, error) {
	cfg := &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    aspectRatio,
	}

	resp, err := g.models.GenerateImages(ctx, g.config.ImageModel, description, cfg)
	if err != nil {
		return nil, classifyError(ctx, err)
	}
	return imageFromImagesResponse(resp)
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
