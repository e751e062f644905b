package domain

// RetrievalOptions configures a retrieval request.
type RetrievalOptions struct {
	// K is the requested number of results. The service caps it at the
	// configured maximum regardless of the caller's value.
	K int

	// Rerank enables the lexical-overlap rerank pass after vector search.
	Rerank bool
}

// RetrievedChunk is one ranked retrieval hit.
type RetrievedChunk struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Score is the similarity score, higher is better.
	Score float64
}

// RetrievalResult is the ranked sequence of hits for one query,
// descending by score, at most k entries. Ephemeral, never persisted.
type RetrievalResult struct {
	// Query is the raw query text.
	Query string

	// ModelID is the embedding model used for the query vector.
	ModelID string

	// Chunks are the ranked hits.
	Chunks []RetrievedChunk
}

// Answer is the output of the generation stage.
type Answer struct {
	// Text is the generated answer.
	Text string

	// ChunkIDs lists the chunks actually included in the prompt after
	// truncation, in prompt order, for attribution.
	ChunkIDs []string

	// ModelID names the generation model.
	ModelID string
}
