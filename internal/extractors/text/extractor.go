// Package text extracts plain text and text-like formats (code, CSV,
// JSON). Content is decoded as UTF-8 and paragraph breaks become
// section boundaries.
package text

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles plain text content.
type Extractor struct{}

// New creates a new plain text extractor.
func New() *Extractor {
	return &Extractor{}
}

// Kinds returns the content kinds this extractor handles.
func (e *Extractor) Kinds() []domain.ContentKind {
	return []domain.ContentKind{domain.KindText}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 5 // Fallback extractor
}

// Extract normalises line endings and records paragraph starts as
// section boundaries.
func (e *Extractor) Extract(_ context.Context, raw *domain.RawInput) (*driven.ExtractResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}
	if !utf8.Valid(raw.Content) {
		return nil, domain.ErrCorruptInput
	}

	text := string(raw.Content)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimRight(text, "\n") + "\n"
	if strings.TrimSpace(text) == "" {
		return &driven.ExtractResult{}, nil
	}

	return &driven.ExtractResult{
		Text:       text,
		Boundaries: ParagraphBoundaries(text),
	}, nil
}

// ParagraphBoundaries returns offsets where paragraphs start: position
// zero plus every position following a blank line.
func ParagraphBoundaries(text string) []int {
	boundaries := []int{0}
	for i := 0; i+1 < len(text); i++ {
		if text[i] == '\n' && text[i+1] == '\n' {
			// Skip the run of newlines to the paragraph start
			j := i + 1
			for j < len(text) && text[j] == '\n' {
				j++
			}
			if j < len(text) {
				boundaries = append(boundaries, j)
			}
			i = j - 1
		}
	}
	return boundaries
}
