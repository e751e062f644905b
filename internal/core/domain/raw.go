package domain

import (
	"crypto/sha256"
	"encoding/hex"
)

// hashWindow is how many leading and trailing bytes feed the content hash.
const hashWindow = 512

// RawInput represents opaque bytes handed to the ingestion pipeline
// before detection and extraction.
type RawInput struct {
	// URI is the original location (file path, URL, etc).
	URI string

	// FilenameHint is an optional filename used when magic-byte sniffing
	// is inconclusive.
	FilenameHint string

	// MIMEHint is an optional caller-supplied MIME type.
	MIMEHint string

	// Content is the raw bytes.
	Content []byte

	// Metadata contains source-specific key-value pairs.
	Metadata map[string]any
}

// ContentHash derives a stable document identifier from the input bytes.
// It hashes the first and last 512 bytes, which is enough to tell real
// files apart without reading multi-gigabyte media twice.
func (r *RawInput) ContentHash() string {
	head := r.Content
	if len(head) > hashWindow {
		head = head[:hashWindow]
	}
	tail := r.Content
	if len(tail) > hashWindow {
		tail = tail[len(tail)-hashWindow:]
	}

	h := sha256.New()
	h.Write(head)
	h.Write(tail)
	return hex.EncodeToString(h.Sum(nil))
}
