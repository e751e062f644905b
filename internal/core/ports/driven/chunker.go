package driven

import "github.com/custodia-labs/corpus-cli/internal/core/domain"

// Chunker splits normalised text into overlapping retrieval units.
// Deterministic: identical input always yields identical chunks.
type Chunker interface {
	// Chunk splits text belonging to documentID. boundaries are section
	// start offsets from extraction, used to avoid breaking mid-sentence.
	Chunk(documentID, text string, boundaries []int) []domain.Chunk
}
