// Package style provides the catalog of named carousel templates a request
// can start from. Each style fixes a global template and a slide layout; the
// caller supplies only the concept.
//
// The catalog is loaded eagerly from YAML files, by default from the files
// embedded in this package, and is read-only afterwards.
package style

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/phrazzld/carousel-api/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed styles/*.yaml
var embedded embed.FS

// ErrStyleNotFound is returned when no style has the requested ID.
var ErrStyleNotFound = errors.New("style not found")

// ErrInvalidStyle is returned when a style file cannot be used.
var ErrInvalidStyle = errors.New("invalid style")

// Style is one named carousel template.
type Style struct {
	ID             string          `yaml:"id"`
	Name           string          `yaml:"name"`
	Description    string          `yaml:"description"`
	Category       string          `yaml:"category"`
	Colors         []string        `yaml:"colors"`
	GlobalTemplate string          `yaml:"global_template"`
	Slides         []SlideTemplate `yaml:"slides"`
}

// SlideTemplate is the layout of one slide in a style.
type SlideTemplate struct {
	LocalContext string            `yaml:"local_context"`
	Elements     []ElementTemplate `yaml:"elements"`
}

// ElementTemplate is one element of a slide layout.
type ElementTemplate struct {
	ID          string `yaml:"id"`
	Type        string `yaml:"type"`
	Instruction string `yaml:"instruction"`
	AspectRatio string `yaml:"aspect_ratio"`
}

// Request builds the carousel request for concept from the style.
func (s *Style) Request(concept string) domain.CarouselRequest {
	req := domain.CarouselRequest{
		Concept:        concept,
		GlobalTemplate: s.GlobalTemplate,
		StyleID:        s.ID,
		Slides:         make([]domain.SlideRequest, 0, len(s.Slides)),
	}
	for _, slide := range s.Slides {
		elems := make([]domain.ElementRequest, 0, len(slide.Elements))
		for _, e := range slide.Elements {
			elems = append(elems, domain.ElementRequest{
				ID:          e.ID,
				Kind:        domain.ElementKind(e.Type),
				Instruction: e.Instruction,
				AspectRatio: e.AspectRatio,
			})
		}
		req.Slides = append(req.Slides, domain.SlideRequest{
			LocalContext: strings.TrimSpace(slide.LocalContext),
			Elements:     elems,
		})
	}
	return req
}

func (s *Style) validate() error {
	if strings.TrimSpace(s.ID) == "" {
		return fmt.Errorf("%w: id cannot be empty", ErrInvalidStyle)
	}
	if strings.TrimSpace(s.GlobalTemplate) == "" {
		return fmt.Errorf("%w: %s: global_template cannot be empty", ErrInvalidStyle, s.ID)
	}
	if len(s.Slides) == 0 {
		return fmt.Errorf("%w: %s: at least one slide is required", ErrInvalidStyle, s.ID)
	}
	if err := s.Request("").Validate(); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidStyle, s.ID, err)
	}
	return nil
}

// Catalog holds styles by ID.
type Catalog struct {
	styles map[string]*Style
	ids    []string
}

// Default returns the catalog of styles embedded in the binary.
func Default() (*Catalog, error) {
	return New(embedded, "styles")
}

// New walks fsys under root, parses every .yaml or .yml file as a Style, and
// returns the catalog. Duplicate IDs and invalid styles are errors.
func New(fsys fs.FS, root string) (*Catalog, error) {
	c := &Catalog{styles: make(map[string]*Style)}

	err := fs.WalkDir(fsys, root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		ext := path.Ext(p)
		if d.IsDir() || (ext != ".yaml" && ext != ".yml") {
			return nil
		}

		s, err := parseFile(fsys, p)
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		if _, dup := c.styles[s.ID]; dup {
			return fmt.Errorf("%s: %w: duplicate id %q", p, ErrInvalidStyle, s.ID)
		}
		c.styles[s.ID] = s
		c.ids = append(c.ids, s.ID)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(c.ids)
	return c, nil
}

func parseFile(fsys fs.FS, p string) (*Style, error) {
	data, err := fs.ReadFile(fsys, p)
	if err != nil {
		return nil, err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var s Style
	if err := dec.Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidStyle, err)
	}
	if err := s.validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Get returns a copy of the style with id, or ErrStyleNotFound.
func (c *Catalog) Get(id string) (*Style, error) {
	s, ok := c.styles[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrStyleNotFound, id)
	}
	return s.clone(), nil
}

// List returns copies of all styles ordered by ID.
func (c *Catalog) List() []*Style {
	out := make([]*Style, 0, len(c.ids))
	for _, id := range c.ids {
		out = append(out, c.styles[id].clone())
	}
	return out
}

func (s *Style) clone() *Style {
	cp := *s
	cp.Colors = append([]string(nil), s.Colors...)
	cp.Slides = make([]SlideTemplate, len(s.Slides))
	for i, slide := range s.Slides {
		cp.Slides[i] = SlideTemplate{
			LocalContext: slide.LocalContext,
			Elements:     append([]ElementTemplate(nil), slide.Elements...),
		}
	}
	return &cp
}
