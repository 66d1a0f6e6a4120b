package domain

import (
	"fmt"
	"strings"
)

// ElementKind identifies what an element's generated content is.
type ElementKind string

// Supported element kinds
const (
	ElementKindText  ElementKind = "text"
	ElementKindImage ElementKind = "image"
)

// DefaultAspectRatio is used for image elements that do not specify one.
const DefaultAspectRatio = "16:9"

// FallbackText is substituted for a text element whose value could not be
// found in the generated response.
const FallbackText = "Content unavailable."

// CarouselRequest is the creative brief for one carousel: a concept, a global
// template and the ordered slides to fill.
type CarouselRequest struct {
	Concept        string
	GlobalTemplate string
	// StyleID names the catalog style the request was built from, if any.
	StyleID string
	Slides  []SlideRequest
}

// SlideRequest describes the elements of one slide. An empty LocalContext
// means the slide follows the global theme.
type SlideRequest struct {
	LocalContext string
	Elements     []ElementRequest
}

// ElementRequest is one named unit of content to generate.
type ElementRequest struct {
	ID          string
	Kind        ElementKind
	Instruction string
	AspectRatio string
}

// EffectiveAspectRatio returns the element's aspect ratio, or DefaultAspectRatio
// when none was given.
func (e ElementRequest) EffectiveAspectRatio() string {
	if strings.TrimSpace(e.AspectRatio) == "" {
		return DefaultAspectRatio
	}
	return e.AspectRatio
}

// SlideResult holds the generated content of one slide keyed by element ID.
type SlideResult struct {
	SlideIndex int
	Content    map[string]ElementResult
}

// ElementResult is the generated content for one element. Text is set for
// text elements; Image, MIMEType and ImageDescription for image elements.
// Image bytes are opaque here and encoded by the caller.
type ElementResult struct {
	Kind             ElementKind
	Text             string
	Image            []byte
	MIMEType         string
	ImageDescription string
}

// IsValidElementKind reports whether kind is a supported element kind.
func IsValidElementKind(kind ElementKind) bool {
	switch kind {
	case ElementKindText, ElementKindImage:
		return true
	default:
		return false
	}
}

// ValidateElementID checks that id can be used as a bare token at the start of
// an "id: value" response line.
func ValidateElementID(id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: element id cannot be empty", ErrInvalidElementID)
	}
	// Response lines are matched after their leading whitespace is dropped,
	// so a padded id could never be found.
	if strings.TrimSpace(id) != id {
		return fmt.Errorf("%w: element id %q must not start or end with whitespace", ErrInvalidElementID, id)
	}
	if strings.ContainsAny(id, ":\r\n") {
		return fmt.Errorf("%w: element id %q must not contain a colon or line break", ErrInvalidElementID, id)
	}
	return nil
}

// Validate checks every element of the request for a usable ID and a known kind.
// Duplicate IDs are not rejected here.
func (r CarouselRequest) Validate() error {
	for slideIdx, slide := range r.Slides {
		for elemIdx, elem := range slide.Elements {
			if err := ValidateElementID(elem.ID); err != nil {
				return fmt.Errorf("slide %d element %d: %w", slideIdx, elemIdx, err)
			}
			if !IsValidElementKind(elem.Kind) {
				return fmt.Errorf("slide %d element %q: %w: %q", slideIdx, elem.ID, ErrInvalidElementKind, elem.Kind)
			}
		}
	}
	return nil
}

// ElementCount returns the number of elements across all slides, and how many
// of them are images.
func (r CarouselRequest) ElementCount() (total int, images int) {
	for _, slide := range r.Slides {
		for _, elem := range slide.Elements {
			total++
			if elem.Kind == ElementKindImage {
				images++
			}
		}
	}
	return total, images
}

// DuplicateElementIDs returns IDs that occur more than once anywhere in the
// request, in order of their second occurrence.
func (r CarouselRequest) DuplicateElementIDs() []string {
	seen := make(map[string]int)
	var dups []string
	for _, slide := range r.Slides {
		for _, elem := range slide.Elements {
			seen[elem.ID]++
			if seen[elem.ID] == 2 {
				dups = append(dups, elem.ID)
			}
		}
	}
	return dups
}

// FallbackImageDescription builds the image description used when none was
// extracted for an image element.
func FallbackImageDescription(concept string) string {
	concept = strings.TrimSpace(concept)
	if concept == "" {
		return "A vibrant, eye-catching image"
	}
	return "A vibrant image for " + strings.ToLower(concept)
}
