package mocks

import (
	"context"
	"sync"

	"github.com/phrazzld/carousel-api/internal/generation"
)

// ImageCall records the arguments of one GenerateImage call.
type ImageCall struct {
	Description string
	AspectRatio string
}

// MockGenerator implements generation.Generator for testing.
// It is safe for concurrent use.
type MockGenerator struct {
	// GenerateTextFn allows test cases to mock the GenerateText behavior
	GenerateTextFn func(ctx context.Context, prompt string) (string, error)

	// GenerateImageFn allows test cases to mock the GenerateImage behavior
	GenerateImageFn func(ctx context.Context, description, aspectRatio string) (*generation.Image, error)

	// Default response values
	Text  string
	Image *generation.Image
	Err   error

	mu         sync.Mutex
	textCalls  []string
	imageCalls []ImageCall
}

var _ generation.Generator = (*MockGenerator)(nil)

// GenerateText implements generation.TextGenerator
func (m *MockGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.textCalls = append(m.textCalls, prompt)
	m.mu.Unlock()

	if m.GenerateTextFn != nil {
		return m.GenerateTextFn(ctx, prompt)
	}
	return m.Text, m.Err
}

// GenerateImage implements generation.ImageGenerator
func (m *MockGenerator) GenerateImage(
	ctx context.Context,
	description, aspectRatio string,
) (*generation.Image, error) {
	m.mu.Lock()
	m.imageCalls = append(m.imageCalls, ImageCall{Description: description, AspectRatio: aspectRatio})
	m.mu.Unlock()

	if m.GenerateImageFn != nil {
		return m.GenerateImageFn(ctx, description, aspectRatio)
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Image, nil
}

// TextCalls returns a copy of the prompts passed to GenerateText, in call order.
func (m *MockGenerator) TextCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.textCalls...)
}

// ImageCalls returns a copy of the GenerateImage arguments, in call order.
func (m *MockGenerator) ImageCalls() []ImageCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ImageCall(nil), m.imageCalls...)
}

// Reset clears the call tracking state
func (m *MockGenerator) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.textCalls = nil
	m.imageCalls = nil
}

// NewMockGeneratorWithText creates a MockGenerator whose text calls return
// text and whose image calls return a small PNG-typed payload.
func NewMockGeneratorWithText(text string) *MockGenerator {
	return &MockGenerator{
		Text:  text,
		Image: &generation.Image{Data: []byte("image-bytes"), MIMEType: "image/png"},
	}
}

// NewMockGeneratorWithError creates a MockGenerator that fails every call with err
func NewMockGeneratorWithError(err error) *MockGenerator {
	return &MockGenerator{Err: err}
}
