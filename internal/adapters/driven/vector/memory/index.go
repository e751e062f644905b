// Package memory provides an in-memory brute-force vector index. It is
// the authoritative owner of committed embedding records; durable
// copies live in the embedding store and the index rebuilds from them
// on startup.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// Ensure Index implements the interface.
var _ driven.VectorIndex = (*Index)(nil)

// entry is a stored record plus its insertion sequence for tie-breaks.
type entry struct {
	record domain.EmbeddingRecord
	seq    int64
}

// Index is a brute-force similarity index. All mutations hold the write
// lock, so a search observes either all or none of a document's records.
type Index struct {
	mu      sync.RWMutex
	entries map[string]*entry
	byDoc   map[string][]string
	nextSeq int64

	dims    int
	modelID string
	metric  domain.SimilarityMetric
}

// NewIndex creates an empty index for vectors of the given
// dimensionality produced by the given model.
func NewIndex(dims int, modelID string, metric domain.SimilarityMetric) *Index {
	if !metric.IsValid() {
		metric = domain.MetricCosine
	}
	return &Index{
		entries: make(map[string]*entry),
		byDoc:   make(map[string][]string),
		dims:    dims,
		modelID: modelID,
		metric:  metric,
	}
}

// Load bulk-inserts records in order, used to rebuild the index from
// the embedding store on startup. Records from a different model are
// skipped.
func (x *Index) Load(records []domain.EmbeddingRecord) error {
	for _, record := range records {
		if record.ModelID != x.modelID {
			continue
		}
		if err := x.Upsert(context.Background(), record); err != nil {
			return fmt.Errorf("loading record %s: %w", record.ChunkID, err)
		}
	}
	return nil
}

// Upsert inserts or replaces the record for a chunk. Re-upserting an
// identical record is a no-op; a replacement keeps the original
// insertion sequence.
func (x *Index) Upsert(_ context.Context, record domain.EmbeddingRecord) error {
	if len(record.Vector) != x.dims {
		return fmt.Errorf("%w: vector has %d dimensions, index has %d",
			domain.ErrDimensionMismatch, len(record.Vector), x.dims)
	}

	x.mu.Lock()
	defer x.mu.Unlock()

	if existing, ok := x.entries[record.ChunkID]; ok {
		if sameRecord(existing.record, record) {
			return nil
		}
		if existing.record.DocumentID != record.DocumentID {
			x.removeFromDoc(existing.record.DocumentID, record.ChunkID)
			x.byDoc[record.DocumentID] = append(x.byDoc[record.DocumentID], record.ChunkID)
		}
		existing.record = record
		return nil
	}

	x.nextSeq++
	x.entries[record.ChunkID] = &entry{record: record, seq: x.nextSeq}
	x.byDoc[record.DocumentID] = append(x.byDoc[record.DocumentID], record.ChunkID)
	return nil
}

// Search returns the k most similar records, descending by score; ties
// break by insertion order, earlier-inserted first.
func (x *Index) Search(_ context.Context, vector []float32, k int) ([]driven.VectorHit, error) {
	if len(vector) != x.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, index has %d",
			domain.ErrDimensionMismatch, len(vector), x.dims)
	}
	if k <= 0 {
		return nil, nil
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	type scored struct {
		hit driven.VectorHit
		seq int64
	}
	results := make([]scored, 0, len(x.entries))
	for _, e := range x.entries {
		results = append(results, scored{
			hit: driven.VectorHit{
				ChunkID:    e.record.ChunkID,
				DocumentID: e.record.DocumentID,
				Score:      x.score(vector, e.record.Vector),
			},
			seq: e.seq,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		if results[i].hit.Score != results[j].hit.Score {
			return results[i].hit.Score > results[j].hit.Score
		}
		return results[i].seq < results[j].seq
	})

	if k > len(results) {
		k = len(results)
	}
	hits := make([]driven.VectorHit, k)
	for i := range hits {
		hits[i] = results[i].hit
	}
	return hits, nil
}

// DeleteDocument atomically removes all records for a document.
func (x *Index) DeleteDocument(_ context.Context, documentID string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	for _, chunkID := range x.byDoc[documentID] {
		delete(x.entries, chunkID)
	}
	delete(x.byDoc, documentID)
	return nil
}

// Dimensions returns the fixed vector dimensionality of the index.
func (x *Index) Dimensions() int {
	return x.dims
}

// ModelID returns the embedding model the index was built with.
func (x *Index) ModelID() string {
	return x.modelID
}

// Close releases resources.
func (x *Index) Close() error {
	return nil
}

// Len returns the number of indexed records.
func (x *Index) Len() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.entries)
}

func (x *Index) removeFromDoc(documentID, chunkID string) {
	ids := x.byDoc[documentID]
	for i, id := range ids {
		if id == chunkID {
			x.byDoc[documentID] = append(ids[:i], ids[i+1:]...)
			return
		}
	}
}

// score computes similarity under the configured metric.
func (x *Index) score(a, b []float32) float64 {
	switch x.metric {
	case domain.MetricInnerProduct:
		return dot(a, b)
	default:
		return cosine(a, b)
	}
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func cosine(a, b []float32) float64 {
	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}

func sameRecord(a, b domain.EmbeddingRecord) bool {
	if a.ModelID != b.ModelID || a.DocumentID != b.DocumentID || len(a.Vector) != len(b.Vector) {
		return false
	}
	for i := range a.Vector {
		if a.Vector[i] != b.Vector[i] {
			return false
		}
	}
	return true
}
