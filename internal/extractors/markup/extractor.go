// Package markup extracts text from HTML documents. Tags are stripped
// by converting to markdown, which preserves logical paragraph and
// heading structure for section boundaries.
package markup

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	md "github.com/JohannesKaufmann/html-to-markdown"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpus-cli/internal/extractors/text"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles HTML and XHTML content.
type Extractor struct {
	converter *md.Converter
}

// New creates a new markup extractor.
func New() *Extractor {
	return &Extractor{
		converter: md.NewConverter("", true, nil),
	}
}

// Kinds returns the content kinds this extractor handles.
func (e *Extractor) Kinds() []domain.ContentKind {
	return []domain.ContentKind{domain.KindMarkup}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50
}

// Extract converts markup to markdown text. Headings and paragraph
// breaks become section boundaries.
func (e *Extractor) Extract(_ context.Context, raw *domain.RawInput) (*driven.ExtractResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if !utf8.Valid(raw.Content) {
		return nil, domain.ErrCorruptInput
	}

	converted, err := e.converter.ConvertString(string(raw.Content))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptInput, err)
	}

	converted = strings.TrimSpace(converted)
	if converted == "" {
		return &driven.ExtractResult{}, nil
	}
	converted += "\n"

	return &driven.ExtractResult{
		Text:       converted,
		Boundaries: text.ParagraphBoundaries(converted),
	}, nil
}
