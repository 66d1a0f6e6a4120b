// Package prompt renders carousel requests into the instruction text sent to
// the text generation model.
//
// Rendering is a pure function of its input. The output-format block of each
// slide is what lets the extract package find every element's value again, so
// the "<id>: <placeholder>" lines must stay in sync with extract.Extract.
package prompt

import (
	"fmt"
	"strings"

	"github.com/phrazzld/carousel-api/internal/domain"
)

// ConceptPlaceholder is replaced by the carousel concept in the global template.
const ConceptPlaceholder = "{prompt}"

const (
	defaultSlideContext = "Follow the global theme for this slide."
	textPlaceholder     = "<text>"
	imagePlaceholder    = "<image description>"
	carouselPreamble    = "Generate the content for every slide of the carousel below. " +
		"Each slide lists its element instructions followed by the exact output format to use."
	formatHeader = "Output format (strict): write exactly one line per element id listed below, " +
		"each line starting with the element id followed by a colon and the result, with no other text."
)

// ComposeGlobalPrompt renders the whole request into a single prompt: the
// global template with the concept substituted, followed by one section per
// slide holding the numbered element instructions and the output-format block.
// With no slides the substituted template is returned as is.
func ComposeGlobalPrompt(req domain.CarouselRequest) string {
	var b strings.Builder
	b.WriteString(ApplyConcept(req.GlobalTemplate, req.Concept))

	if len(req.Slides) == 0 {
		return b.String()
	}

	b.WriteString("\n\n")
	b.WriteString(carouselPreamble)

	for i, slide := range req.Slides {
		b.WriteString("\n\n")
		writeSlideSection(&b, i, slide)
	}
	b.WriteString("\n")
	return b.String()
}

// ApplyConcept replaces every ConceptPlaceholder in template with concept.
// A template without the placeholder is returned unchanged.
func ApplyConcept(template, concept string) string {
	return strings.ReplaceAll(template, ConceptPlaceholder, concept)
}

// ImageDescriptionInstruction turns an image element's instruction into a
// request for a concrete description an image model can render.
func ImageDescriptionInstruction(instruction string) string {
	return fmt.Sprintf(
		"generate a detailed, cinematic image description (80 words max) based on the instruction: '%s'",
		strings.TrimSpace(instruction),
	)
}

// ComposeElementPrompt renders a standalone prompt for a single element:
// the global context followed by the specific request.
func ComposeElementPrompt(globalPrompt, instruction string) string {
	return fmt.Sprintf("%s\n\n**Specific Content Request:** %s\n\n**Output:**",
		strings.TrimRight(globalPrompt, "\n"), strings.TrimSpace(instruction))
}

func writeSlideSection(b *strings.Builder, index int, slide domain.SlideRequest) {
	fmt.Fprintf(b, "### Slide %d\n", index+1)

	context := strings.TrimSpace(slide.LocalContext)
	if context == "" {
		context = defaultSlideContext
	}
	fmt.Fprintf(b, "Context: %s\n\nInstructions:\n", context)

	var format strings.Builder
	for n, elem := range slide.Elements {
		fmt.Fprintf(b, "%d. For element id '%s', %s\n", n+1, elem.ID, elementInstruction(elem))
		fmt.Fprintf(&format, "%s: %s\n", elem.ID, placeholderFor(elem.Kind))
	}

	b.WriteString("\n")
	b.WriteString(formatHeader)
	b.WriteString("\n")
	b.WriteString(strings.TrimRight(format.String(), "\n"))
}

func elementInstruction(elem domain.ElementRequest) string {
	if elem.Kind == domain.ElementKindImage {
		return ImageDescriptionInstruction(elem.Instruction)
	}
	return strings.TrimSpace(elem.Instruction)
}

func placeholderFor(kind domain.ElementKind) string {
	if kind == domain.ElementKindImage {
		return imagePlaceholder
	}
	return textPlaceholder
}
