package driving

import (
	"context"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
)

// RetrievalService selects the chunks most relevant to a query.
type RetrievalService interface {
	// Retrieve embeds the query and returns the top-k ranked chunks.
	// k is capped at the configured maximum.
	Retrieve(ctx context.Context, query string, opts domain.RetrievalOptions) (*domain.RetrievalResult, error)
}

// AnswerService produces grounded answers from retrieval results.
type AnswerService interface {
	// Answer assembles a bounded context from the retrieval result and
	// asks the generation service for an answer. No partial answers are
	// returned on failure.
	Answer(ctx context.Context, query string, result *domain.RetrievalResult) (*domain.Answer, error)

	// Summarize generates and stores a summary artefact for an indexed
	// document.
	Summarize(ctx context.Context, documentID string) (string, error)
}
