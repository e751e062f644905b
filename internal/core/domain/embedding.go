package domain

// EmbeddingRecord pairs a chunk with its vector representation and the
// model that produced it. The vector index owns these records.
type EmbeddingRecord struct {
	// ChunkID identifies the embedded chunk.
	ChunkID string

	// DocumentID links to the chunk's parent document, so all records of
	// one document can be removed atomically.
	DocumentID string

	// Vector is the fixed-dimension embedding. Dimensionality is constant
	// per index.
	Vector []float32

	// ModelID names the embedding model that produced the vector.
	// A record embedded with a different model replaces the prior one.
	ModelID string
}

// SimilarityMetric selects how vectors are compared.
type SimilarityMetric string

// Available similarity metrics.
const (
	// MetricCosine compares normalised vector angles.
	MetricCosine SimilarityMetric = "cosine"

	// MetricInnerProduct compares raw dot products.
	MetricInnerProduct SimilarityMetric = "inner_product"
)

// IsValid returns true if the metric is recognised.
func (m SimilarityMetric) IsValid() bool {
	return m == MetricCosine || m == MetricInnerProduct
}

// String returns the string representation.
func (m SimilarityMetric) String() string {
	return string(m)
}
