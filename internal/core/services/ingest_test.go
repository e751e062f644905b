package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storemem "github.com/custodia-labs/corpus-cli/internal/adapters/driven/storage/memory"
	vectormem "github.com/custodia-labs/corpus-cli/internal/adapters/driven/vector/memory"
	"github.com/custodia-labs/corpus-cli/internal/chunker"
	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// mockDetector always reports the configured detection.
type mockDetector struct {
	detection domain.Detection
}

func (m *mockDetector) Detect(_ []byte, _ string) domain.Detection {
	return m.detection
}

// mockRegistry returns a canned extraction result or error.
type mockRegistry struct {
	result *driven.ExtractResult
	err    error
	calls  int
}

func (m *mockRegistry) Register(_ driven.Extractor) {}

func (m *mockRegistry) Extract(_ context.Context, _ domain.ContentKind, _ *domain.RawInput) (*driven.ExtractResult, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockRegistry) SupportedKinds() []domain.ContentKind {
	return []domain.ContentKind{domain.KindText}
}

// mockEmbedder returns fixed-dimension vectors derived from text length.
type mockEmbedder struct {
	dims  int
	model string
	err   error
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vectors, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	if m.err != nil {
		return nil, m.err
	}
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, m.dims)
		for j := range v {
			v[j] = float32(len(text)%7) + float32(j)
		}
		vectors[i] = v
	}
	return vectors, nil
}

func (m *mockEmbedder) Dimensions() int              { return m.dims }
func (m *mockEmbedder) ModelName() string            { return m.model }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

type ingestFixture struct {
	orchestrator *IngestOrchestrator
	docStore     *storemem.DocumentStore
	embStore     *storemem.EmbeddingStore
	index        *vectormem.Index
	registry     *mockRegistry
}

func newIngestFixture(registry *mockRegistry) *ingestFixture {
	docStore := storemem.NewDocumentStore()
	embStore := storemem.NewEmbeddingStore()
	embedder := &mockEmbedder{dims: 4, model: "mock-embed"}
	index := vectormem.NewIndex(4, "mock-embed", domain.MetricCosine)

	orchestrator := NewIngestOrchestrator(
		&mockDetector{detection: domain.Detection{
			Kind:       domain.KindText,
			MIMEType:   "text/plain",
			Confidence: 1.0,
		}},
		registry,
		chunker.New(),
		docStore,
		embStore,
		embedder,
		index,
		NewWorkerPool(2, 2),
	)
	return &ingestFixture{
		orchestrator: orchestrator,
		docStore:     docStore,
		embStore:     embStore,
		index:        index,
		registry:     registry,
	}
}

func TestIngest_FullPipeline(t *testing.T) {
	f := newIngestFixture(&mockRegistry{
		result: &driven.ExtractResult{Text: "some extracted text about databases\n"},
	})

	doc, err := f.orchestrator.Ingest(context.Background(), &domain.RawInput{
		URI:          "file:///notes.txt",
		FilenameHint: "notes.txt",
		Content:      []byte("raw bytes"),
	})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusIndexed, doc.Status)
	assert.Equal(t, "notes", doc.Title)
	assert.Equal(t, "text/plain", doc.Metadata["mime_type"])

	chunks, err := f.docStore.GetChunks(context.Background(), doc.ID)
	require.NoError(t, err)
	require.NotEmpty(t, chunks)

	records, err := f.embStore.ListEmbeddings(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, len(chunks))
	assert.Equal(t, len(chunks), f.index.Len())
}

func TestIngest_IdenticalBytesAreIdempotent(t *testing.T) {
	f := newIngestFixture(&mockRegistry{
		result: &driven.ExtractResult{Text: "stable content\n"},
	})
	raw := &domain.RawInput{URI: "file:///a.txt", Content: []byte("same bytes")}

	first, err := f.orchestrator.Ingest(context.Background(), raw)
	require.NoError(t, err)
	require.Equal(t, domain.StatusIndexed, first.Status)

	second, err := f.orchestrator.Ingest(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, f.registry.calls, "indexed document must not be re-extracted")
}

func TestIngest_EmptyInput(t *testing.T) {
	f := newIngestFixture(&mockRegistry{})

	_, err := f.orchestrator.Ingest(context.Background(), &domain.RawInput{})

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	var stageErr *domain.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "detect", stageErr.Stage)
	assert.False(t, stageErr.Retriable)
}

func TestIngest_UnsupportedContentFailsDocument(t *testing.T) {
	f := newIngestFixture(&mockRegistry{err: domain.ErrUnsupportedContent})
	raw := &domain.RawInput{URI: "file:///x.bin", Content: []byte("opaque")}

	_, err := f.orchestrator.Ingest(context.Background(), raw)

	assert.ErrorIs(t, err, domain.ErrUnsupportedContent)
	var stageErr *domain.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.Equal(t, "extract", stageErr.Stage)
	assert.False(t, stageErr.Retriable)

	doc, err := f.docStore.GetDocument(context.Background(), raw.ContentHash())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, doc.Status)
}

func TestIngest_TimeoutLeavesDegradedDocument(t *testing.T) {
	f := newIngestFixture(&mockRegistry{err: domain.ErrExtractionTimeout})
	raw := &domain.RawInput{URI: "file:///slow.mp3", Content: []byte("audio")}

	doc, err := f.orchestrator.Ingest(context.Background(), raw)

	assert.ErrorIs(t, err, domain.ErrExtractionTimeout)
	var stageErr *domain.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.True(t, stageErr.Retriable)

	require.NotNil(t, doc)
	assert.Equal(t, domain.StatusDegraded, doc.Status)

	stored, getErr := f.docStore.GetDocument(context.Background(), raw.ContentHash())
	require.NoError(t, getErr)
	assert.Equal(t, domain.StatusDegraded, stored.Status)
	assert.Equal(t, true, stored.Metadata["degraded"])
}

func TestIngest_OverloadLeavesNoTrace(t *testing.T) {
	f := newIngestFixture(&mockRegistry{err: domain.ErrOverloaded})
	raw := &domain.RawInput{URI: "file:///busy.txt", Content: []byte("queued out")}

	_, err := f.orchestrator.Ingest(context.Background(), raw)

	assert.ErrorIs(t, err, domain.ErrOverloaded)
	var stageErr *domain.StageError
	require.ErrorAs(t, err, &stageErr)
	assert.True(t, stageErr.Retriable)

	_, getErr := f.docStore.GetDocument(context.Background(), raw.ContentHash())
	assert.ErrorIs(t, getErr, domain.ErrNotFound)
}

func TestIngest_DegradedExtractionPropagates(t *testing.T) {
	f := newIngestFixture(&mockRegistry{
		result: &driven.ExtractResult{Text: "partial transcript\n", Degraded: true},
	})

	doc, err := f.orchestrator.Ingest(context.Background(), &domain.RawInput{
		URI:     "file:///clip.mp4",
		Content: []byte("video"),
	})

	require.NoError(t, err)
	assert.Equal(t, domain.StatusDegraded, doc.Status)
	assert.Equal(t, true, doc.Metadata["degraded"])

	// Degraded documents are still searchable
	assert.Positive(t, f.index.Len())
}

func TestPurge_RemovesEverywhere(t *testing.T) {
	f := newIngestFixture(&mockRegistry{
		result: &driven.ExtractResult{Text: "content to purge\n"},
	})
	raw := &domain.RawInput{URI: "file:///gone.txt", Content: []byte("bytes")}

	doc, err := f.orchestrator.Ingest(context.Background(), raw)
	require.NoError(t, err)
	require.Positive(t, f.index.Len())

	require.NoError(t, f.orchestrator.Purge(context.Background(), doc.ID))

	_, err = f.docStore.GetDocument(context.Background(), doc.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	records, err := f.embStore.ListEmbeddings(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Zero(t, f.index.Len())
}

func TestStatus_FallsBackToStore(t *testing.T) {
	f := newIngestFixture(&mockRegistry{
		result: &driven.ExtractResult{Text: "status check\n"},
	})
	raw := &domain.RawInput{URI: "file:///s.txt", Content: []byte("bytes")}

	doc, err := f.orchestrator.Ingest(context.Background(), raw)
	require.NoError(t, err)

	status, err := f.orchestrator.Status(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, status.DocumentID)
	assert.Equal(t, domain.StatusIndexed, status.Status)

	_, err = f.orchestrator.Status(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
