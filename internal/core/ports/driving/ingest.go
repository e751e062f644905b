package driving

import (
	"context"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// IngestService accepts raw inputs and runs them through the ingestion
// pipeline: detect, extract, chunk, embed, index.
type IngestService interface {
	// Ingest processes one input to completion. Failures are isolated to
	// this input; other in-flight ingestions are unaffected. Returns the
	// stored document, which may carry a degraded status.
	Ingest(ctx context.Context, raw *domain.RawInput) (*domain.Document, error)

	// Purge removes a document, its chunks and its index records.
	Purge(ctx context.Context, documentID string) error

	// Status reports progress for an in-flight document, or its stored
	// state when no ingestion is running.
	Status(ctx context.Context, documentID string) (*IngestStatus, error)
}

// IngestStatus describes ingestion progress for one document.
type IngestStatus struct {
	// DocumentID identifies the document.
	DocumentID string

	// Status is the current lifecycle state.
	Status domain.DocumentStatus

	// ChunksIndexed counts chunks committed to the index so far.
	ChunksIndexed int
}
