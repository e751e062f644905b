package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedContent indicates no extractor exists for the detected
	// content kind. Permanent for that input.
	ErrUnsupportedContent = errors.New("unsupported content kind")

	// ErrCorruptInput indicates a malformed payload or container.
	// Permanent and isolated to one document.
	ErrCorruptInput = errors.New("corrupt input")

	// ErrExtractionTimeout indicates an external extraction tool exceeded
	// its time budget, including the reduced-fidelity retry.
	ErrExtractionTimeout = errors.New("extraction timed out")

	// ErrDimensionMismatch indicates a vector's dimensionality disagrees
	// with the index. Signals a model configuration inconsistency.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrModelMismatch indicates the query-side embedding model is absent
	// or differs from the model that built the index.
	ErrModelMismatch = errors.New("embedding model mismatch")

	// ErrGenerationFailed indicates the generation service was unavailable
	// or timed out past the retry budget.
	ErrGenerationFailed = errors.New("generation service failed")

	// ErrOverloaded indicates the extraction pool and its queue are
	// saturated. The caller may retry later.
	ErrOverloaded = errors.New("ingestion overloaded")
)

// StageError is the structured terminal failure returned to callers.
// It names the pipeline stage that failed and whether the operation is
// safe to retry.
type StageError struct {
	// Stage is the pipeline stage, e.g. "detect", "extract", "embed",
	// "index", "retrieve", "generate".
	Stage string

	// Retriable is true when the caller may safely retry the operation.
	Retriable bool

	// Err is the underlying failure.
	Err error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

// Unwrap exposes the underlying error for errors.Is/As.
func (e *StageError) Unwrap() error {
	return e.Err
}

// NewStageError wraps err with stage attribution.
func NewStageError(stage string, retriable bool, err error) *StageError {
	return &StageError{Stage: stage, Retriable: retriable, Err: err}
}
