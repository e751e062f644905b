package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driving"
	"github.com/custodia-labs/corpus-cli/internal/logger"
)

// Ensure IngestOrchestrator implements the interface.
var _ driving.IngestService = (*IngestOrchestrator)(nil)

// IngestOrchestrator runs raw inputs through the ingestion pipeline:
// detect, extract, chunk, embed, index. Failures are isolated per
// document; extraction runs on a bounded worker pool.
type IngestOrchestrator struct {
	detector driven.TypeDetector
	registry driven.ExtractorRegistry
	chunker  driven.Chunker
	docStore driven.DocumentStore
	embStore driven.EmbeddingStore
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	pool     *WorkerPool

	// Status tracking
	mu     sync.RWMutex
	active map[string]*driving.IngestStatus
}

// NewIngestOrchestrator creates an ingest orchestrator.
// The embedder and index are optional; without them documents stop at
// the extracted state.
func NewIngestOrchestrator(
	detector driven.TypeDetector,
	registry driven.ExtractorRegistry,
	chunker driven.Chunker,
	docStore driven.DocumentStore,
	embStore driven.EmbeddingStore,
	embedder driven.EmbeddingService,
	index driven.VectorIndex,
	pool *WorkerPool,
) *IngestOrchestrator {
	return &IngestOrchestrator{
		detector: detector,
		registry: registry,
		chunker:  chunker,
		docStore: docStore,
		embStore: embStore,
		embedder: embedder,
		index:    index,
		pool:     pool,
		active:   make(map[string]*driving.IngestStatus),
	}
}

// Ingest processes one input to completion.
//
//nolint:gocyclo // Pipeline orchestration with necessary sequential steps
func (o *IngestOrchestrator) Ingest(ctx context.Context, raw *domain.RawInput) (*domain.Document, error) {
	if raw == nil || len(raw.Content) == 0 {
		return nil, domain.NewStageError("detect", false, domain.ErrInvalidInput)
	}

	logger.Section("Ingest")
	logger.Debug("Input: %s (%d bytes)", raw.URI, len(raw.Content))

	// 1. DETECT
	detection := o.detector.Detect(raw.Content, raw.FilenameHint)
	logger.Info("Detected kind=%s mime=%s confidence=%.1f",
		detection.Kind, detection.MIMEType, detection.Confidence)

	// 2. CONTENT-HASH IDENTITY - re-ingesting identical bytes is a no-op
	// once the document is indexed
	id := raw.ContentHash()
	if existing, err := o.docStore.GetDocument(ctx, id); err == nil && existing.Status == domain.StatusIndexed {
		logger.Debug("Document %s already indexed, skipping", id)
		return existing, nil
	}

	doc := &domain.Document{
		ID:        id,
		Kind:      detection.Kind,
		URI:       raw.URI,
		Title:     titleFor(raw),
		Status:    domain.StatusPending,
		Metadata:  map[string]any{"mime_type": detection.MIMEType},
		CreatedAt: time.Now().UTC(),
		UpdatedAt: time.Now().UTC(),
	}
	if err := o.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	o.setStatus(doc.ID, domain.StatusPending, 0)
	defer o.clearStatus(doc.ID)

	// 3. EXTRACT under a bounded worker pool slot
	var result *driven.ExtractResult
	err := o.pool.Do(ctx, func(ctx context.Context) error {
		o.setStatus(doc.ID, domain.StatusExtracting, 0)
		var extractErr error
		result, extractErr = o.registry.Extract(ctx, detection.Kind, raw)
		return extractErr
	})
	if err != nil {
		return o.failExtraction(ctx, doc, err)
	}

	doc.Content = result.Text
	doc.Status = domain.StatusExtracted
	if result.Degraded {
		doc.Status = domain.StatusDegraded
		doc.Metadata["degraded"] = true
		logger.Warn("Extraction degraded for %s", doc.ID)
	}

	// 4. CHUNK
	chunks := o.chunker.Chunk(doc.ID, result.Text, result.Boundaries)
	logger.Debug("Chunked into %d chunks", len(chunks))

	// 5. PERSIST text and chunks
	doc.UpdatedAt = time.Now().UTC()
	if err := o.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}
	if err := o.docStore.SaveChunks(ctx, chunks); err != nil {
		return nil, fmt.Errorf("save chunks: %w", err)
	}

	if o.embedder == nil || o.index == nil || len(chunks) == 0 {
		logger.Debug("No embedding service/index configured, document stays %s", doc.Status)
		return doc, nil
	}

	// 6. EMBED
	records, err := o.embedChunks(ctx, doc.ID, chunks)
	if err != nil {
		return nil, err
	}

	// 7. COMMIT to store and index
	if err := o.embStore.SaveEmbeddings(ctx, records); err != nil {
		return nil, fmt.Errorf("save embeddings: %w", err)
	}
	for i, record := range records {
		if err := o.index.Upsert(ctx, record); err != nil {
			if errors.Is(err, domain.ErrDimensionMismatch) {
				return nil, domain.NewStageError("index", false, err)
			}
			return nil, fmt.Errorf("index chunk %s: %w", record.ChunkID, err)
		}
		o.setStatus(doc.ID, doc.Status, i+1)
	}

	if doc.Status != domain.StatusDegraded {
		doc.Status = domain.StatusIndexed
	}
	doc.UpdatedAt = time.Now().UTC()
	if err := o.docStore.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("save document: %w", err)
	}

	logger.Info("Ingested %s: %d chunks, status=%s", doc.ID, len(chunks), doc.Status)
	return doc, nil
}

// embedChunks generates embedding records for all chunks in one batch.
func (o *IngestOrchestrator) embedChunks(
	ctx context.Context, documentID string, chunks []domain.Chunk,
) ([]domain.EmbeddingRecord, error) {
	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Content
	}

	vectors, err := o.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return nil, domain.NewStageError("embed", true, err)
	}
	if len(vectors) != len(chunks) {
		return nil, domain.NewStageError("embed", false,
			fmt.Errorf("%w: got %d vectors for %d chunks", domain.ErrInvalidInput, len(vectors), len(chunks)))
	}

	records := make([]domain.EmbeddingRecord, len(chunks))
	for i := range chunks {
		if len(vectors[i]) != o.embedder.Dimensions() {
			return nil, domain.NewStageError("embed", false, domain.ErrDimensionMismatch)
		}
		records[i] = domain.EmbeddingRecord{
			ChunkID:    chunks[i].ID,
			DocumentID: documentID,
			Vector:     vectors[i],
			ModelID:    o.embedder.ModelName(),
		}
	}
	return records, nil
}

// failExtraction records the terminal extraction outcome for a document
// and maps the error onto the stage taxonomy.
func (o *IngestOrchestrator) failExtraction(
	ctx context.Context, doc *domain.Document, err error,
) (*domain.Document, error) {
	switch {
	case errors.Is(err, domain.ErrOverloaded):
		// The document never started; remove the pending row so a retry
		// starts clean
		if delErr := o.docStore.DeleteDocument(ctx, doc.ID); delErr != nil {
			logger.Warn("Failed to remove pending document %s: %v", doc.ID, delErr)
		}
		return nil, domain.NewStageError("extract", true, err)

	case errors.Is(err, domain.ErrExtractionTimeout):
		doc.Status = domain.StatusDegraded
		doc.Metadata["degraded"] = true
		o.saveTerminal(ctx, doc)
		return doc, domain.NewStageError("extract", true, err)

	case errors.Is(err, domain.ErrUnsupportedContent),
		errors.Is(err, domain.ErrCorruptInput):
		doc.Status = domain.StatusFailed
		o.saveTerminal(ctx, doc)
		return nil, domain.NewStageError("extract", false, err)

	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return nil, err

	default:
		doc.Status = domain.StatusFailed
		o.saveTerminal(ctx, doc)
		return nil, domain.NewStageError("extract", false, err)
	}
}

func (o *IngestOrchestrator) saveTerminal(ctx context.Context, doc *domain.Document) {
	doc.UpdatedAt = time.Now().UTC()
	if err := o.docStore.SaveDocument(ctx, doc); err != nil {
		logger.Warn("Failed to save terminal state for %s: %v", doc.ID, err)
	}
}

// Purge removes a document, its chunks and its index records. The index
// delete is atomic with respect to concurrent searches.
func (o *IngestOrchestrator) Purge(ctx context.Context, documentID string) error {
	if o.index != nil {
		if err := o.index.DeleteDocument(ctx, documentID); err != nil {
			return fmt.Errorf("delete from index: %w", err)
		}
	}
	if o.embStore != nil {
		if err := o.embStore.DeleteEmbeddings(ctx, documentID); err != nil {
			return fmt.Errorf("delete embeddings: %w", err)
		}
	}
	if err := o.docStore.DeleteDocument(ctx, documentID); err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	logger.Info("Purged document %s", documentID)
	return nil
}

// Status reports ingestion progress for a document.
func (o *IngestOrchestrator) Status(ctx context.Context, documentID string) (*driving.IngestStatus, error) {
	o.mu.RLock()
	if status, ok := o.active[documentID]; ok {
		copied := *status
		o.mu.RUnlock()
		return &copied, nil
	}
	o.mu.RUnlock()

	doc, err := o.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	return &driving.IngestStatus{
		DocumentID: documentID,
		Status:     doc.Status,
	}, nil
}

func (o *IngestOrchestrator) setStatus(documentID string, status domain.DocumentStatus, chunks int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.active[documentID] = &driving.IngestStatus{
		DocumentID:    documentID,
		Status:        status,
		ChunksIndexed: chunks,
	}
}

func (o *IngestOrchestrator) clearStatus(documentID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.active, documentID)
}

// titleFor derives a display title from the input hints.
func titleFor(raw *domain.RawInput) string {
	if raw.Metadata != nil {
		if title, ok := raw.Metadata["title"].(string); ok && title != "" {
			return title
		}
	}
	name := raw.FilenameHint
	if name == "" {
		name = raw.URI
	}
	return baseName(name)
}

// baseName trims directories and the extension from a path-ish string.
func baseName(path string) string {
	slash := -1
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' || path[i] == '\\' {
			slash = i
			break
		}
	}
	name := path[slash+1:]
	for i := len(name) - 1; i > 0; i-- {
		if name[i] == '.' {
			return name[:i]
		}
	}
	return name
}
