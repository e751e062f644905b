package driven

import "github.com/custodia-labs/corpus-cli/internal/core/domain"

// TypeDetector classifies raw bytes into a content kind.
// Detection is a pure function over the input; it never errors for
// unrecognised content, it reports KindBinary with low confidence and
// leaves the unsupported-content decision to extractor dispatch.
type TypeDetector interface {
	// Detect sniffs content signatures, falling back to the filename
	// extension when sniffing is inconclusive.
	Detect(data []byte, filenameHint string) domain.Detection
}
