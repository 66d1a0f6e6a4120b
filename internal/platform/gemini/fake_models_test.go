package gemini

import (
	"context"
	"sync"

	"google.golang.org/genai"
)

// fakeModels is a modelsAPI that records calls and answers from function fields.
type fakeModels struct {
	mu sync.Mutex

	GenerateContentFn func(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateImagesFn  func(ctx context.Context, model, prompt string, cfg *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)

	contentCalls []contentCall
	imagesCalls  []imagesCall
}

type contentCall struct {
	Model    string
	Prompt   string
	Config   *genai.GenerateContentConfig
	Deadline bool
}

type imagesCall struct {
	Model  string
	Prompt string
	Config *genai.GenerateImagesConfig
}

func (f *fakeModels) GenerateContent(
	ctx context.Context,
	model string,
	contents []*genai.Content,
	cfg *genai.GenerateContentConfig,
) (*genai.GenerateContentResponse, error) {
	_, hasDeadline := ctx.Deadline()
	f.mu.Lock()
	f.contentCalls = append(f.contentCalls, contentCall{
		Model:    model,
		Prompt:   promptText(contents),
		Config:   cfg,
		Deadline: hasDeadline,
	})
	f.mu.Unlock()

	if f.GenerateContentFn == nil {
		return textResponse("ok"), nil
	}
	return f.GenerateContentFn(ctx, model, contents, cfg)
}

func (f *fakeModels) GenerateImages(
	ctx context.Context,
	model, prompt string,
	cfg *genai.GenerateImagesConfig,
) (*genai.GenerateImagesResponse, error) {
	f.mu.Lock()
	f.imagesCalls = append(f.imagesCalls, imagesCall{Model: model, Prompt: prompt, Config: cfg})
	f.mu.Unlock()

	if f.GenerateImagesFn == nil {
		return &genai.GenerateImagesResponse{}, nil
	}
	return f.GenerateImagesFn(ctx, model, prompt, cfg)
}

func promptText(contents []*genai.Content) string {
	var text string
	for _, content := range contents {
		if content == nil {
			continue
		}
		for _, part := range content.Parts {
			if part != nil {
				text += part.Text
			}
		}
	}
	return text
}

func textResponse(parts ...string) *genai.GenerateContentResponse {
	content := &genai.Content{Role: genai.RoleModel}
	for _, p := range parts {
		content.Parts = append(content.Parts, &genai.Part{Text: p})
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: content, FinishReason: genai.FinishReasonStop}},
	}
}

func inlineImageResponse(data []byte, mimeType string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role: genai.RoleModel,
				Parts: []*genai.Part{
					{Text: "Here is your image."},
					{InlineData: &genai.Blob{Data: data, MIMEType: mimeType}},
				},
			},
			FinishReason: genai.FinishReasonStop,
		}},
	}
}
