package driven

import (
	"context"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// VectorIndex answers nearest-neighbour queries over embedding records.
// It is the authoritative owner of committed records. Writes for one
// document are atomic with respect to concurrent searches: a search
// observes either all or none of a document's records, never a mix.
type VectorIndex interface {
	// Upsert inserts or replaces the record for a chunk. Re-upserting an
	// identical (chunk, vector, model) triple is a no-op. Returns
	// domain.ErrDimensionMismatch when the vector size disagrees with
	// the index.
	Upsert(ctx context.Context, record domain.EmbeddingRecord) error

	// Search returns the k records most similar to the query vector,
	// descending by score; ties break by insertion order
	// (earlier-inserted wins).
	Search(ctx context.Context, vector []float32, k int) ([]VectorHit, error)

	// DeleteDocument atomically removes all records belonging to a
	// document.
	DeleteDocument(ctx context.Context, documentID string) error

	// Dimensions returns the fixed vector dimensionality of the index.
	Dimensions() int

	// ModelID returns the embedding model the index was built with.
	ModelID() string

	// Close releases resources.
	Close() error
}

// VectorHit is a similarity search result.
type VectorHit struct {
	// ChunkID is the matched chunk.
	ChunkID string

	// DocumentID is the chunk's parent document.
	DocumentID string

	// Score is the similarity score, higher is better.
	Score float64
}
