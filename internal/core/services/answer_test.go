package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storemem "github.com/custodia-labs/corpus-cli/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// mockLLM fails the first n calls, then returns completion. It records
// every prompt it receives.
type mockLLM struct {
	calls      int
	failFirst  int
	failWith   error
	completion string
	prompts    []string
}

func (m *mockLLM) Generate(_ context.Context, prompt string, _ driven.GenerateOptions) (string, error) {
	m.calls++
	m.prompts = append(m.prompts, prompt)
	if m.calls <= m.failFirst {
		return "", m.failWith
	}
	return m.completion, nil
}

func (m *mockLLM) ModelName() string            { return "mock-llm" }
func (m *mockLLM) Ping(_ context.Context) error { return nil }
func (m *mockLLM) Close() error                 { return nil }

func generationSettings() domain.GenerationSettings {
	return domain.GenerationSettings{
		MaxAttempts:   3,
		ContextBudget: 50,
		MaxTokens:     512,
		Timeout:       time.Second,
	}
}

func retrievalResult(chunks ...domain.RetrievedChunk) *domain.RetrievalResult {
	return &domain.RetrievalResult{Query: "q", ModelID: "m", Chunks: chunks}
}

func TestAnswer_GeneratesFromContext(t *testing.T) {
	llm := &mockLLM{completion: "grounded answer"}
	o := NewAnswerOrchestrator(llm, storemem.NewDocumentStore(), generationSettings())

	answer, err := o.Answer(context.Background(), "what is it?", retrievalResult(
		domain.RetrievedChunk{Chunk: domain.Chunk{ID: "c1", Content: "relevant facts"}, Score: 0.9},
	))

	require.NoError(t, err)
	assert.Equal(t, "grounded answer", answer.Text)
	assert.Equal(t, []string{"c1"}, answer.ChunkIDs)
	assert.Equal(t, "mock-llm", answer.ModelID)

	require.Len(t, llm.prompts, 1)
	assert.Contains(t, llm.prompts[0], "relevant facts")
	assert.Contains(t, llm.prompts[0], "what is it?")
}

func TestAnswer_TruncationKeepsHighestScoredPrefix(t *testing.T) {
	llm := &mockLLM{completion: "answer"}
	o := NewAnswerOrchestrator(llm, storemem.NewDocumentStore(), generationSettings())

	// Budget is 50: the 30-char chunk fits, the 40-char one does not.
	// The 10-char chunk would still fit, but admitting it would keep a
	// lower-scored chunk while a higher-scored one was dropped
	big := make([]byte, 40)
	for i := range big {
		big[i] = 'b'
	}
	answer, err := o.Answer(context.Background(), "q", retrievalResult(
		domain.RetrievedChunk{Chunk: domain.Chunk{ID: "c1", Content: "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"}, Score: 0.9},
		domain.RetrievedChunk{Chunk: domain.Chunk{ID: "c2", Content: string(big)}, Score: 0.8},
		domain.RetrievedChunk{Chunk: domain.Chunk{ID: "c3", Content: "cccccccccc"}, Score: 0.7},
	))

	require.NoError(t, err)
	assert.Equal(t, []string{"c1"}, answer.ChunkIDs)
	assert.NotContains(t, llm.prompts[0], string(big))
	assert.NotContains(t, llm.prompts[0], "cccccccccc")
}

func TestAnswer_EmptyRetrieval(t *testing.T) {
	o := NewAnswerOrchestrator(&mockLLM{}, storemem.NewDocumentStore(), generationSettings())

	_, err := o.Answer(context.Background(), "q", retrievalResult())
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = o.Answer(context.Background(), "q", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAnswer_EmptyQuery(t *testing.T) {
	o := NewAnswerOrchestrator(&mockLLM{}, storemem.NewDocumentStore(), generationSettings())

	_, err := o.Answer(context.Background(), "  ", retrievalResult(
		domain.RetrievedChunk{Chunk: domain.Chunk{ID: "c1", Content: "text"}},
	))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAnswer_NoLLMConfigured(t *testing.T) {
	o := NewAnswerOrchestrator(nil, storemem.NewDocumentStore(), generationSettings())

	_, err := o.Answer(context.Background(), "q", retrievalResult(
		domain.RetrievedChunk{Chunk: domain.Chunk{ID: "c1", Content: "text"}},
	))
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
}

func TestAnswer_RetriesTransientFailures(t *testing.T) {
	llm := &mockLLM{
		failFirst:  2,
		failWith:   errors.New("upstream hiccup"),
		completion: "eventually fine",
	}
	o := NewAnswerOrchestrator(llm, storemem.NewDocumentStore(), generationSettings())

	answer, err := o.Answer(context.Background(), "q", retrievalResult(
		domain.RetrievedChunk{Chunk: domain.Chunk{ID: "c1", Content: "text"}},
	))

	require.NoError(t, err)
	assert.Equal(t, "eventually fine", answer.Text)
	assert.Equal(t, 3, llm.calls)
}

func TestAnswer_ExhaustedRetriesReturnNoPartialAnswer(t *testing.T) {
	llm := &mockLLM{
		failFirst: 3,
		failWith:  errors.New("persistent outage"),
	}
	o := NewAnswerOrchestrator(llm, storemem.NewDocumentStore(), generationSettings())

	answer, err := o.Answer(context.Background(), "q", retrievalResult(
		domain.RetrievedChunk{Chunk: domain.Chunk{ID: "c1", Content: "text"}},
	))

	assert.Nil(t, answer)
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
	var stageErr *domain.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "generate", stageErr.Stage)
	assert.False(t, stageErr.Retriable)
	assert.Equal(t, 3, llm.calls)
}

func TestAnswer_RepeatedServiceTimeoutsAreTerminal(t *testing.T) {
	llm := &mockLLM{
		failFirst: 3,
		failWith:  fmt.Errorf("post chat: %w", context.DeadlineExceeded),
	}
	o := NewAnswerOrchestrator(llm, storemem.NewDocumentStore(), generationSettings())

	answer, err := o.Answer(context.Background(), "q", retrievalResult(
		domain.RetrievedChunk{Chunk: domain.Chunk{ID: "c1", Content: "text"}},
	))

	assert.Nil(t, answer)
	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
	var stageErr *domain.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "generate", stageErr.Stage)
	assert.Equal(t, 3, llm.calls)
}

func TestAnswer_CallerCancellationPassesThrough(t *testing.T) {
	llm := &mockLLM{
		failFirst: 3,
		failWith:  context.Canceled,
	}
	o := NewAnswerOrchestrator(llm, storemem.NewDocumentStore(), generationSettings())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Answer(ctx, "q", retrievalResult(
		domain.RetrievedChunk{Chunk: domain.Chunk{ID: "c1", Content: "text"}},
	))

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, domain.ErrGenerationFailed)
}

func TestAnswer_EmptyCompletionIsRetried(t *testing.T) {
	llm := &mockLLM{completion: "   "}
	o := NewAnswerOrchestrator(llm, storemem.NewDocumentStore(), generationSettings())

	_, err := o.Answer(context.Background(), "q", retrievalResult(
		domain.RetrievedChunk{Chunk: domain.Chunk{ID: "c1", Content: "text"}},
	))

	assert.ErrorIs(t, err, domain.ErrGenerationFailed)
	assert.Equal(t, 3, llm.calls)
}

func TestSummarize_StoresSummaryMetadata(t *testing.T) {
	docStore := storemem.NewDocumentStore()
	require.NoError(t, docStore.SaveDocument(context.Background(), &domain.Document{
		ID:      "d1",
		Title:   "Notes",
		Content: "long extracted document text",
		Status:  domain.StatusIndexed,
	}))
	llm := &mockLLM{completion: "a short summary"}
	o := NewAnswerOrchestrator(llm, docStore, generationSettings())

	summary, err := o.Summarize(context.Background(), "d1")

	require.NoError(t, err)
	assert.Equal(t, "a short summary", summary)

	doc, err := docStore.GetDocument(context.Background(), "d1")
	require.NoError(t, err)
	assert.Equal(t, "a short summary", doc.Metadata["summary"])
	assert.Equal(t, "mock-llm", doc.Metadata["summary_model"])
}

func TestSummarize_TruncatesToBudget(t *testing.T) {
	docStore := storemem.NewDocumentStore()
	long := make([]byte, 200)
	for i := range long {
		long[i] = 'x'
	}
	require.NoError(t, docStore.SaveDocument(context.Background(), &domain.Document{
		ID:      "d1",
		Content: string(long),
	}))
	llm := &mockLLM{completion: "summary"}
	o := NewAnswerOrchestrator(llm, docStore, generationSettings())

	_, err := o.Summarize(context.Background(), "d1")

	require.NoError(t, err)
	require.Len(t, llm.prompts, 1)
	assert.NotContains(t, llm.prompts[0], string(long))
}

func TestSummarize_MissingDocument(t *testing.T) {
	o := NewAnswerOrchestrator(&mockLLM{}, storemem.NewDocumentStore(), generationSettings())

	_, err := o.Summarize(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSummarize_EmptyContent(t *testing.T) {
	docStore := storemem.NewDocumentStore()
	require.NoError(t, docStore.SaveDocument(context.Background(), &domain.Document{
		ID:      "d1",
		Content: "   ",
	}))
	o := NewAnswerOrchestrator(&mockLLM{}, docStore, generationSettings())

	_, err := o.Summarize(context.Background(), "d1")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
