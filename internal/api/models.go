package api

import (
	"encoding/base64"
	"time"

	"github.com/phrazzld/carousel-api/internal/domain"
	"github.com/phrazzld/carousel-api/internal/store"
	"github.com/phrazzld/carousel-api/internal/style"
)

// CarouselRequest defines the payload for POST /api/carousels.
type CarouselRequest struct {
	Concept        string         `json:"concept"         validate:"required,max=2000"`
	GlobalTemplate string         `json:"global_template" validate:"max=20000"`
	StyleID        string         `json:"style_id"        validate:"max=100"`
	Slides         []SlideRequest `json:"slides"          validate:"max=30,dive"`
}

// SlideRequest is one slide of a CarouselRequest.
type SlideRequest struct {
	LocalContext string           `json:"local_context" validate:"max=4000"`
	Elements     []ElementRequest `json:"elements"      validate:"max=20,dive"`
}

// ElementRequest is one element of a SlideRequest.
type ElementRequest struct {
	ID          string `json:"id"           validate:"elementid,max=100"`
	Type        string `json:"type"         validate:"required,oneof=text image"`
	Instruction string `json:"instruction"  validate:"max=4000"`
	AspectRatio string `json:"aspect_ratio" validate:"omitempty,oneof=1:1 2:3 3:2 3:4 4:3 4:5 5:4 9:16 16:9 21:9"`
}

// toDomain converts the payload to the domain request.
func (r CarouselRequest) toDomain() domain.CarouselRequest {
	out := domain.CarouselRequest{
		Concept:        r.Concept,
		GlobalTemplate: r.GlobalTemplate,
		StyleID:        r.StyleID,
		Slides:         make([]domain.SlideRequest, 0, len(r.Slides)),
	}
	for _, slide := range r.Slides {
		elems := make([]domain.ElementRequest, 0, len(slide.Elements))
		for _, e := range slide.Elements {
			elems = append(elems, domain.ElementRequest{
				ID:          e.ID,
				Kind:        domain.ElementKind(e.Type),
				Instruction: e.Instruction,
				AspectRatio: e.AspectRatio,
			})
		}
		out.Slides = append(out.Slides, domain.SlideRequest{
			LocalContext: slide.LocalContext,
			Elements:     elems,
		})
	}
	return out
}

// SlideResponse is the generated content of one slide.
type SlideResponse struct {
	SlideIndex int                        `json:"slide_index"`
	Content    map[string]ElementResponse `json:"content"`
}

// ElementResponse is the generated content of one element. For images Value
// holds the base64-encoded bytes.
type ElementResponse struct {
	Type                 string `json:"type"`
	Value                string `json:"value"`
	MIMEType             string `json:"mime_type,omitempty"`
	ImageDescriptionUsed string `json:"image_description_used,omitempty"`
}

func slidesToResponse(results []domain.SlideResult) []SlideResponse {
	out := make([]SlideResponse, 0, len(results))
	for _, slide := range results {
		content := make(map[string]ElementResponse, len(slide.Content))
		for id, elem := range slide.Content {
			content[id] = elementToResponse(elem)
		}
		out = append(out, SlideResponse{SlideIndex: slide.SlideIndex, Content: content})
	}
	return out
}

func elementToResponse(elem domain.ElementResult) ElementResponse {
	if elem.Kind == domain.ElementKindImage {
		return ElementResponse{
			Type:                 string(domain.ElementKindImage),
			Value:                base64.StdEncoding.EncodeToString(elem.Image),
			MIMEType:             elem.MIMEType,
			ImageDescriptionUsed: elem.ImageDescription,
		}
	}
	return ElementResponse{
		Type:  string(domain.ElementKindText),
		Value: elem.Text,
	}
}

// StyleSummary is a catalog entry as listed by GET /api/styles.
type StyleSummary struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Colors      []string `json:"colors"`
	SlideCount  int      `json:"slide_count"`
}

// StyleResponse is the full style returned by GET /api/styles/{id}.
type StyleResponse struct {
	StyleSummary
	GlobalTemplate string         `json:"global_template"`
	Slides         []SlideRequest `json:"slides"`
}

func styleToSummary(s *style.Style) StyleSummary {
	colors := s.Colors
	if colors == nil {
		colors = []string{}
	}
	return StyleSummary{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Category:    s.Category,
		Colors:      colors,
		SlideCount:  len(s.Slides),
	}
}

func styleToResponse(s *style.Style) StyleResponse {
	slides := make([]SlideRequest, 0, len(s.Slides))
	for _, slide := range s.Slides {
		elems := make([]ElementRequest, 0, len(slide.Elements))
		for _, e := range slide.Elements {
			elems = append(elems, ElementRequest{
				ID:          e.ID,
				Type:        e.Type,
				Instruction: e.Instruction,
				AspectRatio: e.AspectRatio,
			})
		}
		slides = append(slides, SlideRequest{LocalContext: slide.LocalContext, Elements: elems})
	}
	return StyleResponse{
		StyleSummary:   styleToSummary(s),
		GlobalTemplate: s.GlobalTemplate,
		Slides:         slides,
	}
}

// RunResponse is one entry of the generation run log.
type RunResponse struct {
	ID           string    `json:"id"`
	Concept      string    `json:"concept"`
	StyleID      string    `json:"style_id,omitempty"`
	SlideCount   int       `json:"slide_count"`
	ElementCount int       `json:"element_count"`
	ImageCount   int       `json:"image_count"`
	Status       string    `json:"status"`
	ErrorKind    string    `json:"error_kind,omitempty"`
	DurationMS   int64     `json:"duration_ms"`
	CreatedAt    time.Time `json:"created_at"`
}

func runToResponse(run *store.Run) RunResponse {
	return RunResponse{
		ID:           run.ID.String(),
		Concept:      run.Concept,
		StyleID:      run.StyleID,
		SlideCount:   run.SlideCount,
		ElementCount: run.ElementCount,
		ImageCount:   run.ImageCount,
		Status:       string(run.Status),
		ErrorKind:    run.ErrorKind,
		DurationMS:   run.Duration.Milliseconds(),
		CreatedAt:    run.CreatedAt,
	}
}
