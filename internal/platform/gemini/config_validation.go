package gemini

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/phrazzld/carousel-api/internal/config"
	"github.com/phrazzld/carousel-api/internal/generation"
)

// validateConfig checks the settings GeminiGenerator cannot run without.
func validateConfig(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) error {
	if cfg.GeminiAPIKey == "" {
		logger.ErrorContext(ctx, "Missing Gemini API key", "error", "GeminiAPIKey is empty")
		return fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.TextModel == "" {
		return fmt.Errorf("%w: text model cannot be empty", generation.ErrInvalidConfig)
	}

	if cfg.ImageModel == "" {
		return fmt.Errorf("%w: image model cannot be empty", generation.ErrInvalidConfig)
	}

	switch cfg.ImageMode {
	case config.ImageModeContent, config.ImageModeImagen:
	default:
		return fmt.Errorf("%w: unknown image mode %q", generation.ErrInvalidConfig, cfg.ImageMode)
	}

	if cfg.TextTimeout < 0 || cfg.ImageTimeout < 0 {
		return fmt.Errorf("%w: timeouts cannot be negative", generation.ErrInvalidConfig)
	}

	logger.DebugContext(ctx, "Gemini configuration validation passed",
		"text_model", cfg.TextModel,
		"image_model", cfg.ImageModel,
		"image_mode", cfg.ImageMode)
	return nil
}
