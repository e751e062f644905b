package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driving"
	"github.com/custodia-labs/corpus-cli/internal/logger"
)

// Ensure RetrievalOrchestrator implements the interface.
var _ driving.RetrievalService = (*RetrievalOrchestrator)(nil)

// RetrievalOrchestrator embeds queries and ranks chunks against the
// vector index, with an optional lexical rerank pass.
type RetrievalOrchestrator struct {
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	docStore driven.DocumentStore
	settings domain.RetrievalSettings
}

// NewRetrievalOrchestrator creates a retrieval orchestrator.
func NewRetrievalOrchestrator(
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	docStore driven.DocumentStore,
	settings domain.RetrievalSettings,
) *RetrievalOrchestrator {
	return &RetrievalOrchestrator{
		embedder: embedder,
		index:    index,
		docStore: docStore,
		settings: settings,
	}
}

// Retrieve embeds the query and returns at most k chunks, descending by
// score. The query is embedded with the same model the index was built
// with; a mismatch is an error, never silently wrong results.
func (o *RetrievalOrchestrator) Retrieve(
	ctx context.Context, query string, opts domain.RetrievalOptions,
) (*domain.RetrievalResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if o.embedder == nil || o.index == nil {
		return nil, fmt.Errorf("%w: no embedding service configured", domain.ErrModelMismatch)
	}
	if o.embedder.ModelName() != o.index.ModelID() {
		return nil, fmt.Errorf("%w: query model %q, index model %q",
			domain.ErrModelMismatch, o.embedder.ModelName(), o.index.ModelID())
	}

	k := opts.K
	if k <= 0 {
		k = o.settings.DefaultK
	}
	if k > o.settings.MaxK {
		logger.Debug("Capping k from %d to %d", k, o.settings.MaxK)
		k = o.settings.MaxK
	}

	logger.Section("Retrieve")
	logger.Debug("Query: %q (k=%d)", query, k)

	vector, err := o.embedder.Embed(ctx, query)
	if err != nil {
		return nil, domain.NewStageError("embed", true, err)
	}

	hits, err := o.index.Search(ctx, vector, k)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	retrieved := make([]domain.RetrievedChunk, 0, len(hits))
	for _, hit := range hits {
		chunk, err := o.docStore.GetChunk(ctx, hit.ChunkID)
		if err != nil {
			// Index can briefly lead the store after a purge; skip rather
			// than fail the whole query
			logger.Debug("Chunk %s not in store, skipping: %v", hit.ChunkID, err)
			continue
		}
		retrieved = append(retrieved, domain.RetrievedChunk{
			Chunk: *chunk,
			Score: hit.Score,
		})
	}

	if opts.Rerank && o.settings.RerankBoost > 0 {
		retrieved = o.rerank(query, retrieved)
	}

	logger.Info("Retrieved %d chunks for query", len(retrieved))
	return &domain.RetrievalResult{
		Query:   query,
		ModelID: o.embedder.ModelName(),
		Chunks:  retrieved,
	}, nil
}

// rerank boosts chunks that share query terms and re-sorts. The sort is
// stable so equal adjusted scores keep their vector ranking.
func (o *RetrievalOrchestrator) rerank(query string, chunks []domain.RetrievedChunk) []domain.RetrievedChunk {
	terms := queryTerms(query)
	if len(terms) == 0 {
		return chunks
	}

	for i := range chunks {
		overlap := termOverlap(terms, chunks[i].Chunk.Content)
		chunks[i].Score += o.settings.RerankBoost * overlap
	}

	sort.SliceStable(chunks, func(i, j int) bool {
		return chunks[i].Score > chunks[j].Score
	})
	return chunks
}

// queryTerms lower-cases and splits the query into unique terms.
func queryTerms(query string) map[string]struct{} {
	terms := make(map[string]struct{})
	for _, field := range strings.Fields(strings.ToLower(query)) {
		field = strings.Trim(field, ".,;:!?\"'()")
		if len(field) > 2 {
			terms[field] = struct{}{}
		}
	}
	return terms
}

// termOverlap returns the fraction of query terms present in the text.
func termOverlap(terms map[string]struct{}, text string) float64 {
	lower := strings.ToLower(text)
	matched := 0
	for term := range terms {
		if strings.Contains(lower, term) {
			matched++
		}
	}
	return float64(matched) / float64(len(terms))
}
