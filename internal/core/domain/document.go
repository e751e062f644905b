package domain

import "time"

// DocumentStatus tracks a document through the ingestion lifecycle.
type DocumentStatus string

// Document lifecycle states.
const (
	// StatusPending means the document was accepted but not yet extracted.
	StatusPending DocumentStatus = "pending"

	// StatusExtracting means extraction is in progress.
	StatusExtracting DocumentStatus = "extracting"

	// StatusExtracted means normalised text is available but not indexed.
	StatusExtracted DocumentStatus = "extracted"

	// StatusDegraded means extraction completed on the reduced-fidelity
	// path after a timeout; the text may be partial.
	StatusDegraded DocumentStatus = "degraded"

	// StatusFailed means extraction failed permanently for this document.
	StatusFailed DocumentStatus = "failed"

	// StatusIndexed means chunks and embeddings are committed to the index.
	// Indexed documents are immutable until purged.
	StatusIndexed DocumentStatus = "indexed"
)

// IsTerminal returns true if no further ingestion work happens in this state.
func (s DocumentStatus) IsTerminal() bool {
	return s == StatusFailed || s == StatusIndexed
}

// Document represents one ingested unit of input.
// Its ID derives from a content hash so re-ingesting identical bytes
// updates the existing document instead of duplicating it.
type Document struct {
	// ID is the content-hash identifier for the document.
	ID string

	// Kind is the detected content kind.
	Kind ContentKind

	// URI is the original source locator (file path, URL, etc).
	URI string

	// Title is the human-readable title.
	Title string

	// Content is the full normalised text after extraction.
	Content string

	// Status is the current lifecycle state.
	Status DocumentStatus

	// Metadata contains arbitrary key-value pairs (MIME type, transcript
	// language, stored summary artefacts, ...).
	Metadata map[string]any

	// CreatedAt is when the document was first ingested.
	CreatedAt time.Time

	// UpdatedAt is when the document was last updated.
	UpdatedAt time.Time
}

// Chunk is a bounded span of a document's normalised text and the unit
// of retrieval. Chunks of one document form a total order by Position.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Position is the ordinal position within the document, starting at 0.
	Position int

	// StartOffset and EndOffset locate the chunk in the document's
	// normalised text, in bytes.
	StartOffset int
	EndOffset   int

	// Overlap is the number of leading bytes shared with the previous
	// chunk. Zero for the first chunk.
	Overlap int

	// Content is the chunk text, including the overlap prefix.
	Content string
}
