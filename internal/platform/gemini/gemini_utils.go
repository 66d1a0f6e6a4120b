package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"

	"github.com/phrazzld/carousel-api/internal/config"
	"github.com/phrazzld/carousel-api/internal/generation"
	"google.golang.org/genai"
)

const defaultImageMIMEType = "image/png"

// NewGenerator creates the generator the application runs with. Without an
// API key it returns generation.Unavailable so the server still starts and
// every generation request is answered as unavailable.
func NewGenerator(
	ctx context.Context,
	logger *slog.Logger,
	cfg config.LLMConfig,
) (generation.Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	if cfg.GeminiAPIKey == "" {
		logger.WarnContext(ctx, "No Gemini API key configured, generation requests will be rejected as unavailable")
		return generation.Unavailable{Reason: "no Gemini API key configured"}, nil
	}

	logger.InfoContext(ctx, "Initializing Gemini generator",
		"text_model", cfg.TextModel,
		"image_model", cfg.ImageModel,
		"image_mode", cfg.ImageMode)

	generator, err := NewGeminiGenerator(ctx, logger, cfg)
	if err != nil {
		return nil, err
	}
	return generator, nil
}

// blockedFinishReasons are candidate finish reasons that mean the upstream
// refused to produce content.
var blockedFinishReasons = map[genai.FinishReason]bool{
	genai.FinishReasonSafety:            true,
	genai.FinishReasonProhibitedContent: true,
	genai.FinishReasonBlocklist:         true,
	genai.FinishReasonSPII:              true,
	genai.FinishReason("IMAGE_SAFETY"):  true,
}

// firstCandidate returns the first candidate of resp, or the error that
// explains why there is none usable.
func firstCandidate(resp *genai.GenerateContentResponse) (*genai.Candidate, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: nil response", generation.ErrGenerationFailed)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0] == nil {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return nil, fmt.Errorf("%w: prompt blocked (%s)", generation.ErrContentBlocked, resp.PromptFeedback.BlockReason)
		}
		return nil, fmt.Errorf("%w: no candidates in response", generation.ErrGenerationFailed)
	}

	candidate := resp.Candidates[0]
	if blockedFinishReasons[candidate.FinishReason] {
		return nil, fmt.Errorf("%w: finish reason %s", generation.ErrContentBlocked, candidate.FinishReason)
	}

	if candidate.Content == nil {
		return nil, fmt.Errorf("%w: empty content in response", generation.ErrGenerationFailed)
	}
	return candidate, nil
}

// textFromResponse concatenates the non-thought text parts of the first candidate.
func textFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	candidate, err := firstCandidate(resp)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, part := range candidate.Content.Parts {
		if part == nil || part.Thought {
			continue
		}
		b.WriteString(part.Text)
	}

	text := b.String()
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: empty text in response", generation.ErrGenerationFailed)
	}
	return text, nil
}

// imageFromContentResponse returns the first inline image part of the first candidate.
func imageFromContentResponse(resp *genai.GenerateContentResponse) (*generation.Image, error) {
	candidate, err := firstCandidate(resp)
	if err != nil {
		return nil, err
	}

	for _, part := range candidate.Content.Parts {
		if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		return &generation.Image{
			Data:     part.InlineData.Data,
			MIMEType: mimeTypeOrDefault(part.InlineData.MIMEType),
		}, nil
	}
	return nil, fmt.Errorf("%w: no image data in response", generation.ErrGenerationFailed)
}

// imageFromImagesResponse returns the first generated image.
func imageFromImagesResponse(resp *genai.GenerateImagesResponse) (*generation.Image, error) {
	if resp == nil || len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0] == nil {
		return nil, fmt.Errorf("%w: no images in response", generation.ErrGenerationFailed)
	}

	generated := resp.GeneratedImages[0]
	if generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
		if generated.RAIFilteredReason != "" {
			return nil, fmt.Errorf("%w: %s", generation.ErrContentBlocked, generated.RAIFilteredReason)
		}
		return nil, fmt.Errorf("%w: no image data in response", generation.ErrGenerationFailed)
	}

	return &generation.Image{
		Data:     generated.Image.ImageBytes,
		MIMEType: mimeTypeOrDefault(generated.Image.MIMEType),
	}, nil
}

func mimeTypeOrDefault(mimeType string) string {
	if mimeType == "" {
		return defaultImageMIMEType
	}
	return mimeType
}

// classifyError maps an error from the genai client onto the generation
// error taxonomy. The original error stays in the chain.
func classifyError(ctx context.Context, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w: upstream call timed out: %w", generation.ErrGenerationFailed, err)
	}
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", generation.ErrGenerationFailed, err)
	}

	if code, ok := apiErrorCode(err); ok {
		switch code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: credentials rejected (status %d): %w", generation.ErrUpstreamUnavailable, code, err)
		default:
			return fmt.Errorf("%w: upstream status %d: %w", generation.ErrGenerationFailed, code, err)
		}
	}

	var netErr net.Error
	if errors.As(err, &netErr) && !netErr.Timeout() {
		return fmt.Errorf("%w: connection failed: %w", generation.ErrUpstreamUnavailable, err)
	}

	return fmt.Errorf("%w: %w", generation.ErrGenerationFailed, err)
}

// apiErrorCode extracts the HTTP status of a genai API error, which the
// client may return by value or by pointer.
func apiErrorCode(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code, true
	}
	return 0, false
}
