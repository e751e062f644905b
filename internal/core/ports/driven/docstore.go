package driven

import (
	"context"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// DocumentStore persists documents and chunks.
// Backed by SQLite for durable storage.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// SaveChunks stores chunks for a document, replacing prior chunks.
	SaveChunks(ctx context.Context, chunks []domain.Chunk) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetChunks retrieves all chunks for a document, ordered by position.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// GetChunk retrieves a specific chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// DeleteDocument removes a document, its chunks and its embedding
	// records in one atomic operation.
	DeleteDocument(ctx context.Context, id string) error

	// ListDocuments returns all documents.
	ListDocuments(ctx context.Context) ([]domain.Document, error)
}

// EmbeddingStore persists embedding records so the vector index can be
// rebuilt on startup.
type EmbeddingStore interface {
	// SaveEmbeddings stores records, replacing prior records for the
	// same chunks.
	SaveEmbeddings(ctx context.Context, records []domain.EmbeddingRecord) error

	// ListEmbeddings returns all records in insertion order.
	ListEmbeddings(ctx context.Context) ([]domain.EmbeddingRecord, error)

	// DeleteEmbeddings removes all records for a document.
	DeleteEmbeddings(ctx context.Context, documentID string) error
}
