package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cenkalti/backoff/v4"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driving"
	"github.com/custodia-labs/corpus-cli/internal/logger"
)

// Ensure AnswerOrchestrator implements the interface.
var _ driving.AnswerService = (*AnswerOrchestrator)(nil)

// AnswerOrchestrator turns retrieval results into grounded answers. The
// prompt context is bounded; generation retries transient failures with
// exponential backoff and never returns a partial answer.
type AnswerOrchestrator struct {
	llm      driven.LLMService
	docStore driven.DocumentStore
	settings domain.GenerationSettings
}

// NewAnswerOrchestrator creates an answer orchestrator.
func NewAnswerOrchestrator(
	llm driven.LLMService,
	docStore driven.DocumentStore,
	settings domain.GenerationSettings,
) *AnswerOrchestrator {
	return &AnswerOrchestrator{
		llm:      llm,
		docStore: docStore,
		settings: settings,
	}
}

// Answer builds a bounded prompt from the retrieval result and asks the
// model. Lower-scored chunks are dropped first when the context budget
// is exceeded.
func (o *AnswerOrchestrator) Answer(
	ctx context.Context, query string, result *domain.RetrievalResult,
) (*domain.Answer, error) {
	if o.llm == nil {
		return nil, fmt.Errorf("%w: no generation service configured", domain.ErrGenerationFailed)
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if result == nil || len(result.Chunks) == 0 {
		return nil, fmt.Errorf("%w: nothing retrieved for query", domain.ErrNotFound)
	}

	logger.Section("Answer")

	included, contextText := o.assembleContext(result.Chunks)
	if len(included) == 0 {
		return nil, fmt.Errorf("%w: no chunk fits the context budget", domain.ErrInvalidInput)
	}
	logger.Debug("Context: %d of %d chunks, %d chars",
		len(included), len(result.Chunks), len(contextText))

	prompt := buildAnswerPrompt(query, contextText)
	text, err := o.generateWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	logger.Info("Generated answer (%d chars) from %d chunks", len(text), len(included))
	return &domain.Answer{
		Text:     text,
		ChunkIDs: included,
		ModelID:  o.llm.ModelName(),
	}, nil
}

// assembleContext concatenates chunk texts in rank order until the
// budget is spent. Truncation drops lowest-scored chunks first: the
// first chunk that no longer fits ends the prompt, so a low-scored
// chunk never displaces a higher-scored one. Returns the included
// chunk IDs in prompt order.
func (o *AnswerOrchestrator) assembleContext(chunks []domain.RetrievedChunk) ([]string, string) {
	budget := o.settings.ContextBudget
	var sb strings.Builder
	var included []string

	for _, rc := range chunks {
		text := strings.TrimSpace(rc.Chunk.Content)
		if text == "" {
			continue
		}
		if sb.Len()+len(text) > budget {
			break
		}
		if sb.Len() > 0 {
			sb.WriteString("\n\n---\n\n")
		}
		sb.WriteString(text)
		included = append(included, rc.Chunk.ID)
	}
	return included, sb.String()
}

// generateWithRetry calls the model with per-attempt timeouts and
// exponential backoff. Exhausted retries surface as a terminal
// ErrGenerationFailed with no partial output.
func (o *AnswerOrchestrator) generateWithRetry(ctx context.Context, prompt string) (string, error) {
	attempts := o.settings.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	opts := driven.GenerateOptions{
		MaxTokens:   o.settings.MaxTokens,
		Temperature: o.settings.Temperature,
	}

	attempt := 0
	operation := func() (string, error) {
		attempt++
		if attempt > 1 {
			logger.Warn("Generation attempt %d/%d", attempt, attempts)
		}
		callCtx, cancel := context.WithTimeout(ctx, o.settings.Timeout)
		defer cancel()

		text, err := o.llm.Generate(callCtx, prompt, opts)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return "", backoff.Permanent(err)
			}
			return "", err
		}
		if strings.TrimSpace(text) == "" {
			return "", fmt.Errorf("model returned empty completion")
		}
		return strings.TrimSpace(text), nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(attempts-1)), ctx)

	text, err := backoff.RetryWithData(operation, policy)
	if err != nil {
		// Caller cancellation passes through untouched; a per-attempt
		// deadline is the service timing out and counts against the
		// retry budget like any other failure
		if ctx.Err() != nil {
			return "", err
		}
		return "", domain.NewStageError("generate", false,
			fmt.Errorf("%w: %d attempts: %v", domain.ErrGenerationFailed, attempt, err))
	}
	return text, nil
}

// Summarize generates a summary for an indexed document and stores it
// on the document as a metadata artefact.
func (o *AnswerOrchestrator) Summarize(ctx context.Context, documentID string) (string, error) {
	if o.llm == nil {
		return "", fmt.Errorf("%w: no generation service configured", domain.ErrGenerationFailed)
	}

	doc, err := o.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(doc.Content) == "" {
		return "", fmt.Errorf("%w: document %s has no extracted text", domain.ErrInvalidInput, documentID)
	}

	logger.Section("Summarize")

	content := doc.Content
	if len(content) > o.settings.ContextBudget {
		content = content[:o.settings.ContextBudget]
	}

	summary, err := o.generateWithRetry(ctx, buildSummaryPrompt(doc.Title, content))
	if err != nil {
		return "", err
	}

	if doc.Metadata == nil {
		doc.Metadata = make(map[string]any)
	}
	doc.Metadata["summary"] = summary
	doc.Metadata["summary_model"] = o.llm.ModelName()
	if err := o.docStore.SaveDocument(ctx, doc); err != nil {
		return "", fmt.Errorf("save summary: %w", err)
	}

	logger.Info("Stored summary for %s (%d chars)", documentID, len(summary))
	return summary, nil
}

func buildAnswerPrompt(query, contextText string) string {
	var sb strings.Builder
	sb.WriteString("Answer the question using only the provided context. ")
	sb.WriteString("If the context does not contain the answer, say so.\n\n")
	sb.WriteString("Context:\n")
	sb.WriteString(contextText)
	sb.WriteString("\n\nQuestion: ")
	sb.WriteString(query)
	sb.WriteString("\n\nAnswer:")
	return sb.String()
}

func buildSummaryPrompt(title, content string) string {
	var sb strings.Builder
	sb.WriteString("Summarise the following document in a short paragraph.\n\n")
	if title != "" {
		sb.WriteString("Title: ")
		sb.WriteString(title)
		sb.WriteString("\n\n")
	}
	sb.WriteString(content)
	sb.WriteString("\n\nSummary:")
	return sb.String()
}
