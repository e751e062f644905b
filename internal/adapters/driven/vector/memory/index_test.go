package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

func record(chunkID, docID string, vector ...float32) domain.EmbeddingRecord {
	return domain.EmbeddingRecord{
		ChunkID:    chunkID,
		DocumentID: docID,
		Vector:     vector,
		ModelID:    "m",
	}
}

func TestUpsert_RejectsWrongDimensions(t *testing.T) {
	x := NewIndex(3, "m", domain.MetricCosine)

	err := x.Upsert(context.Background(), record("c1", "d1", 1, 0))
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
	assert.Zero(t, x.Len())
}

func TestUpsert_IdenticalRecordIsNoOp(t *testing.T) {
	x := NewIndex(2, "m", domain.MetricCosine)
	r := record("c1", "d1", 1, 0)

	require.NoError(t, x.Upsert(context.Background(), r))
	require.NoError(t, x.Upsert(context.Background(), r))

	assert.Equal(t, 1, x.Len())
}

func TestUpsert_ReplacementKeepsInsertionOrder(t *testing.T) {
	x := NewIndex(2, "m", domain.MetricCosine)
	require.NoError(t, x.Upsert(context.Background(), record("c1", "d1", 1, 0)))
	require.NoError(t, x.Upsert(context.Background(), record("c2", "d1", 1, 0)))

	// Replace c1's vector; both now score identically against the query
	require.NoError(t, x.Upsert(context.Background(), record("c1", "d1", 2, 0)))

	hits, err := x.Search(context.Background(), []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	// c1 kept its original (earlier) sequence so it wins the tie
	assert.Equal(t, "c1", hits[0].ChunkID)
	assert.Equal(t, "c2", hits[1].ChunkID)
}

func TestSearch_OrdersByScore(t *testing.T) {
	x := NewIndex(2, "m", domain.MetricCosine)
	require.NoError(t, x.Upsert(context.Background(), record("far", "d1", 0, 1)))
	require.NoError(t, x.Upsert(context.Background(), record("near", "d1", 1, 0.1)))
	require.NoError(t, x.Upsert(context.Background(), record("exact", "d1", 1, 0)))

	hits, err := x.Search(context.Background(), []float32{1, 0}, 3)

	require.NoError(t, err)
	require.Len(t, hits, 3)
	assert.Equal(t, "exact", hits[0].ChunkID)
	assert.Equal(t, "near", hits[1].ChunkID)
	assert.Equal(t, "far", hits[2].ChunkID)
	assert.InDelta(t, 1.0, hits[0].Score, 0.001)
}

func TestSearch_TiesBreakByInsertionOrder(t *testing.T) {
	x := NewIndex(2, "m", domain.MetricCosine)
	// Same direction, different magnitude: identical cosine scores
	require.NoError(t, x.Upsert(context.Background(), record("first", "d1", 1, 0)))
	require.NoError(t, x.Upsert(context.Background(), record("second", "d2", 3, 0)))

	hits, err := x.Search(context.Background(), []float32{1, 0}, 2)

	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "first", hits[0].ChunkID)
	assert.Equal(t, "second", hits[1].ChunkID)
}

func TestSearch_CapsAtAvailableRecords(t *testing.T) {
	x := NewIndex(2, "m", domain.MetricCosine)
	require.NoError(t, x.Upsert(context.Background(), record("c1", "d1", 1, 0)))

	hits, err := x.Search(context.Background(), []float32{1, 0}, 10)
	require.NoError(t, err)
	assert.Len(t, hits, 1)

	hits, err = x.Search(context.Background(), []float32{1, 0}, 0)
	require.NoError(t, err)
	assert.Nil(t, hits)
}

func TestSearch_RejectsWrongQueryDimensions(t *testing.T) {
	x := NewIndex(2, "m", domain.MetricCosine)

	_, err := x.Search(context.Background(), []float32{1, 0, 0}, 1)
	assert.ErrorIs(t, err, domain.ErrDimensionMismatch)
}

func TestSearch_InnerProductMetric(t *testing.T) {
	x := NewIndex(2, "m", domain.MetricInnerProduct)
	require.NoError(t, x.Upsert(context.Background(), record("small", "d1", 1, 0)))
	require.NoError(t, x.Upsert(context.Background(), record("large", "d1", 3, 0)))

	hits, err := x.Search(context.Background(), []float32{1, 0}, 2)

	require.NoError(t, err)
	// Magnitude matters under inner product
	assert.Equal(t, "large", hits[0].ChunkID)
	assert.InDelta(t, 3.0, hits[0].Score, 0.001)
}

func TestDeleteDocument_RemovesAllRecords(t *testing.T) {
	x := NewIndex(2, "m", domain.MetricCosine)
	require.NoError(t, x.Upsert(context.Background(), record("c1", "d1", 1, 0)))
	require.NoError(t, x.Upsert(context.Background(), record("c2", "d1", 0, 1)))
	require.NoError(t, x.Upsert(context.Background(), record("c3", "d2", 1, 1)))

	require.NoError(t, x.DeleteDocument(context.Background(), "d1"))

	assert.Equal(t, 1, x.Len())
	hits, err := x.Search(context.Background(), []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "c3", hits[0].ChunkID)
}

func TestLoad_SkipsOtherModels(t *testing.T) {
	x := NewIndex(2, "current", domain.MetricCosine)
	records := []domain.EmbeddingRecord{
		{ChunkID: "c1", DocumentID: "d1", Vector: []float32{1, 0}, ModelID: "current"},
		{ChunkID: "c2", DocumentID: "d1", Vector: []float32{0, 1}, ModelID: "stale"},
	}

	require.NoError(t, x.Load(records))

	assert.Equal(t, 1, x.Len())
}

func TestNewIndex_InvalidMetricFallsBackToCosine(t *testing.T) {
	x := NewIndex(2, "m", domain.SimilarityMetric("bogus"))
	require.NoError(t, x.Upsert(context.Background(), record("c1", "d1", 2, 0)))

	hits, err := x.Search(context.Background(), []float32{1, 0}, 1)
	require.NoError(t, err)
	// Cosine normalises magnitude away
	assert.InDelta(t, 1.0, hits[0].Score, 0.001)
}

func TestSearch_DeterministicOnUnmodifiedIndex(t *testing.T) {
	x := NewIndex(2, "m", domain.MetricCosine)
	require.NoError(t, x.Upsert(context.Background(), record("c1", "d1", 1, 0)))
	require.NoError(t, x.Upsert(context.Background(), record("c2", "d1", 0.8, 0.2)))
	require.NoError(t, x.Upsert(context.Background(), record("c3", "d2", 0.5, 0.5)))

	first, err := x.Search(context.Background(), []float32{1, 0}, 3)
	require.NoError(t, err)
	second, err := x.Search(context.Background(), []float32{1, 0}, 3)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSearch_TwoDocumentsTopTwo(t *testing.T) {
	x := NewIndex(2, "m", domain.MetricCosine)
	require.NoError(t, x.Upsert(context.Background(), record("a1", "docA", 1, 0)))
	require.NoError(t, x.Upsert(context.Background(), record("a2", "docA", 0.9, 0.1)))
	require.NoError(t, x.Upsert(context.Background(), record("b1", "docB", 0.5, 0.5)))

	hits, err := x.Search(context.Background(), []float32{1, 0}, 2)

	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.GreaterOrEqual(t, hits[0].Score, hits[1].Score)
}

func TestSearch_NeverObservesPartialDelete(t *testing.T) {
	x := NewIndex(2, "m", domain.MetricCosine)
	for _, id := range []string{"c1", "c2", "c3", "c4"} {
		require.NoError(t, x.Upsert(context.Background(), record(id, "doomed", 1, 0)))
	}
	require.NoError(t, x.Upsert(context.Background(), record("keep", "stable", 0, 1)))

	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = x.DeleteDocument(context.Background(), "doomed")
	}()

	// Every snapshot holds all four of the document's records or none
	for {
		hits, err := x.Search(context.Background(), []float32{1, 0}, 10)
		require.NoError(t, err)
		count := 0
		for _, hit := range hits {
			if hit.DocumentID == "doomed" {
				count++
			}
		}
		assert.Contains(t, []int{0, 4}, count)
		if count == 0 {
			break
		}
	}
	<-done

	assert.Equal(t, 1, x.Len())
}

func TestSearch_ZeroVectorScoresZero(t *testing.T) {
	x := NewIndex(2, "m", domain.MetricCosine)
	require.NoError(t, x.Upsert(context.Background(), record("zero", "d1", 0, 0)))

	hits, err := x.Search(context.Background(), []float32{1, 0}, 1)
	require.NoError(t, err)
	assert.Zero(t, hits[0].Score)
}
