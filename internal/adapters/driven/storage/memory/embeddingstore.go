package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// Ensure EmbeddingStore implements the interface.
var _ driven.EmbeddingStore = (*EmbeddingStore)(nil)

// EmbeddingStore is an in-memory implementation of driven.EmbeddingStore.
// Records keep insertion order so index rebuilds are deterministic.
type EmbeddingStore struct {
	mu      sync.RWMutex
	records []domain.EmbeddingRecord
	byChunk map[string]int
}

// NewEmbeddingStore creates a new in-memory embedding store.
func NewEmbeddingStore() *EmbeddingStore {
	return &EmbeddingStore{
		byChunk: make(map[string]int),
	}
}

// SaveEmbeddings stores records, replacing prior records for the same
// chunks in place.
func (s *EmbeddingStore) SaveEmbeddings(_ context.Context, records []domain.EmbeddingRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, record := range records {
		if i, ok := s.byChunk[record.ChunkID]; ok {
			s.records[i] = record
			continue
		}
		s.byChunk[record.ChunkID] = len(s.records)
		s.records = append(s.records, record)
	}
	return nil
}

// ListEmbeddings returns all records in insertion order.
func (s *EmbeddingStore) ListEmbeddings(_ context.Context) ([]domain.EmbeddingRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.EmbeddingRecord, len(s.records))
	copy(result, s.records)
	return result, nil
}

// DeleteEmbeddings removes all records for a document.
func (s *EmbeddingStore) DeleteEmbeddings(_ context.Context, documentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.records[:0]
	for _, record := range s.records {
		if record.DocumentID != documentID {
			kept = append(kept, record)
		}
	}
	s.records = kept
	s.byChunk = make(map[string]int, len(s.records))
	for i, record := range s.records {
		s.byChunk[record.ChunkID] = i
	}
	return nil
}
