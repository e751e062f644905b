package driven

import (
	"context"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// Extractor converts raw bytes of specific content kinds into
// normalised plain text.
type Extractor interface {
	// Kinds returns the content kinds this extractor handles.
	Kinds() []domain.ContentKind

	// Priority returns the selection priority (higher = preferred).
	// Specialised extractors should return 90-100, generic ones 50-89,
	// fallbacks 1-9.
	Priority() int

	// Extract produces normalised text and logical section boundaries.
	Extract(ctx context.Context, raw *domain.RawInput) (*ExtractResult, error)
}

// ExtractResult is the output of extraction.
type ExtractResult struct {
	// Text is the normalised plain text.
	Text string

	// Boundaries are byte offsets into Text where logical sections start,
	// ascending. The chunker prefers these over mid-sentence breaks.
	Boundaries []int

	// Degraded is true when the text came from the reduced-fidelity
	// fast path after a timeout and may be partial.
	Degraded bool
}

// ExtractorRegistry dispatches to the best extractor for a content kind.
// New kinds are supported by registering a new variant, not by branching
// on kind throughout the codebase.
type ExtractorRegistry interface {
	// Register adds an extractor to the registry.
	Register(extractor Extractor)

	// Extract dispatches to the highest-priority extractor for the kind.
	// Returns domain.ErrUnsupportedContent when no extractor exists.
	Extract(ctx context.Context, kind domain.ContentKind, raw *domain.RawInput) (*ExtractResult, error)

	// SupportedKinds returns all kinds with at least one extractor.
	SupportedKinds() []domain.ContentKind
}
