// Package chunker splits normalised text into overlapping retrieval
// units, preferring section and sentence boundaries over mid-sentence
// breaks.
package chunker

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// Ensure Chunker implements the interface.
var _ driven.Chunker = (*Chunker)(nil)

// Default chunking parameters, in bytes.
const (
	DefaultSize      = 1000
	DefaultOverlap   = 100
	DefaultMinSize   = 200
	DefaultTolerance = 200
)

// Chunker produces deterministic overlapping chunks.
type Chunker struct {
	size      int
	overlap   int
	minSize   int
	tolerance int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithSize sets the maximum chunk size in bytes.
func WithSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.size = size
		}
	}
}

// WithOverlap sets the overlap between consecutive chunks in bytes.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// WithMinSize sets the minimum viable chunk size; a smaller trailing
// chunk is merged into its predecessor.
func WithMinSize(minSize int) Option {
	return func(c *Chunker) {
		if minSize >= 0 {
			c.minSize = minSize
		}
	}
}

// WithTolerance sets how far before the hard limit a section or
// sentence boundary is still preferred over a forced split.
func WithTolerance(tolerance int) Option {
	return func(c *Chunker) {
		if tolerance >= 0 {
			c.tolerance = tolerance
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		size:      DefaultSize,
		overlap:   DefaultOverlap,
		minSize:   DefaultMinSize,
		tolerance: DefaultTolerance,
	}

	for _, opt := range opts {
		opt(c)
	}

	// Overlap must leave room for forward progress
	if c.overlap >= c.size {
		c.overlap = c.size / 4
	}
	if c.tolerance >= c.size {
		c.tolerance = c.size / 2
	}

	return c
}

// FromSettings creates a chunker from application settings.
func FromSettings(s domain.ChunkerSettings) *Chunker {
	return New(
		WithSize(s.Size),
		WithOverlap(s.Overlap),
		WithMinSize(s.MinSize),
		WithTolerance(s.Tolerance),
	)
}

// Chunk splits text into ordered chunks. Identical input always yields
// an identical sequence, including chunk IDs: IDs are name-based UUIDs
// over (documentID, position).
func (c *Chunker) Chunk(documentID, text string, boundaries []int) []domain.Chunk {
	if text == "" {
		return nil
	}

	textLen := len(text)
	estimated := textLen/(c.size-c.overlap) + 1
	chunks := make([]domain.Chunk, 0, estimated)

	start := 0
	prevEnd := 0

	for start < textLen {
		end := start + c.size
		if end >= textLen {
			end = textLen
		} else {
			end = c.pickBreak(text, boundaries, start, end)
		}

		overlap := 0
		if len(chunks) > 0 && start < prevEnd {
			overlap = prevEnd - start
		}

		position := len(chunks)
		chunks = append(chunks, domain.Chunk{
			ID:          chunkID(documentID, position),
			DocumentID:  documentID,
			Position:    position,
			StartOffset: start,
			EndOffset:   end,
			Overlap:     overlap,
			Content:     text[start:end],
		})

		if end == textLen {
			break
		}

		next := end - c.overlap
		if next <= start {
			// Guard against stalling when overlap swallows the whole
			// chunk (tiny sizes)
			next = end
		}
		prevEnd = end
		start = next
	}

	return c.mergeTrailing(text, chunks)
}

// pickBreak finds the best break position at or before the hard limit.
// Section boundaries win over sentence boundaries; both must fall in
// the tolerance window and keep the chunk above the minimum size.
func (c *Chunker) pickBreak(text string, boundaries []int, start, hardEnd int) int {
	lo := hardEnd - c.tolerance
	if lo < start+c.minSize {
		lo = start + c.minSize
	}
	if lo >= hardEnd {
		return hardEnd
	}

	if b, ok := latestBoundaryIn(boundaries, lo, hardEnd); ok {
		return b
	}
	if s, ok := latestSentenceEndIn(text, lo, hardEnd); ok {
		return s
	}

	// A single section larger than the budget: force-split at the limit
	return hardEnd
}

// mergeTrailing folds a below-minimum final chunk into its predecessor.
func (c *Chunker) mergeTrailing(text string, chunks []domain.Chunk) []domain.Chunk {
	if len(chunks) < 2 {
		return chunks
	}

	last := chunks[len(chunks)-1]
	if len(last.Content)-last.Overlap >= c.minSize {
		return chunks
	}

	prev := &chunks[len(chunks)-2]
	prev.EndOffset = last.EndOffset
	prev.Content = text[prev.StartOffset:prev.EndOffset]
	return chunks[:len(chunks)-1]
}

// latestBoundaryIn returns the greatest boundary in (lo, hi), if any.
func latestBoundaryIn(boundaries []int, lo, hi int) (int, bool) {
	// boundaries are ascending; find the first >= hi and step back
	i := sort.SearchInts(boundaries, hi)
	for i > 0 {
		i--
		if boundaries[i] > lo {
			return boundaries[i], true
		}
		break
	}
	return 0, false
}

// latestSentenceEndIn scans backwards for a sentence terminator in
// (lo, hi) and returns the offset just past it.
func latestSentenceEndIn(text string, lo, hi int) (int, bool) {
	for i := hi - 1; i > lo; i-- {
		switch text[i-1] {
		case '\n':
			return i, true
		case '.', '!', '?':
			// Terminator must be followed by whitespace or end of window
			if i < len(text) && text[i] != ' ' && text[i] != '\n' && text[i] != '\t' {
				continue
			}
			return i, true
		}
	}
	return 0, false
}

// chunkID derives a stable chunk identifier from the document and
// position, so re-chunking identical input reuses the same IDs.
func chunkID(documentID string, position int) string {
	name := fmt.Sprintf("%s/%d", documentID, position)
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}
