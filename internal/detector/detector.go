// Package detector classifies raw bytes into content kinds using
// magic-byte signatures, with a filename-extension fallback when
// sniffing is inconclusive.
package detector

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
)

// Ensure Detector implements the interface.
var _ driven.TypeDetector = (*Detector)(nil)

// octetStream is the inconclusive sniffing result.
const octetStream = "application/octet-stream"

// Confidence levels per detection path.
const (
	confidenceSignature = 1.0
	confidenceExtension = 0.5
	confidenceNone      = 0.1
)

// extensionMIMEs maps common extensions to MIME types for the fallback
// path. Signature sniffing already covers most binary formats; this
// list exists for text formats without magic bytes.
var extensionMIMEs = map[string]string{
	".txt":  "text/plain",
	".md":   "text/markdown",
	".csv":  "text/csv",
	".json": "application/json",
	".html": "text/html",
	".htm":  "text/html",
	".xml":  "application/xml",
	".srt":  "text/plain",
	".vtt":  "text/vtt",
	".mp3":  "audio/mpeg",
	".wav":  "audio/wav",
	".m4a":  "audio/mp4",
	".ogg":  "audio/ogg",
	".flac": "audio/flac",
	".mp4":  "video/mp4",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".mov":  "video/quicktime",
}

// Detector sniffs content signatures.
type Detector struct{}

// New creates a new detector.
func New() *Detector {
	return &Detector{}
}

// Detect classifies raw bytes. Pure: identical input always yields an
// identical result.
func (d *Detector) Detect(data []byte, filenameHint string) domain.Detection {
	mime := mimetype.Detect(data).String()
	// Strip parameters like "; charset=utf-8"
	if i := strings.IndexByte(mime, ';'); i >= 0 {
		mime = strings.TrimSpace(mime[:i])
	}

	if mime != octetStream && mime != "" {
		return domain.Detection{
			Kind:       kindForMIME(mime),
			MIMEType:   mime,
			Confidence: confidenceSignature,
		}
	}

	// Fall back to the filename extension.
	if filenameHint != "" {
		ext := strings.ToLower(filepath.Ext(filenameHint))
		if m, ok := extensionMIMEs[ext]; ok {
			return domain.Detection{
				Kind:       kindForMIME(m),
				MIMEType:   m,
				Confidence: confidenceExtension,
			}
		}
	}

	return domain.Detection{
		Kind:       domain.KindBinary,
		MIMEType:   octetStream,
		Confidence: confidenceNone,
	}
}

// kindForMIME maps a MIME type onto a content kind.
func kindForMIME(mime string) domain.ContentKind {
	switch {
	case mime == "text/html" || mime == "application/xhtml+xml":
		return domain.KindMarkup
	case strings.HasPrefix(mime, "text/"),
		mime == "application/json",
		mime == "application/xml",
		mime == "application/x-ndjson",
		mime == "application/javascript":
		return domain.KindText
	case strings.HasPrefix(mime, "audio/"):
		return domain.KindAudio
	case strings.HasPrefix(mime, "video/"):
		return domain.KindVideo
	case strings.HasPrefix(mime, "image/"):
		return domain.KindImage
	default:
		return domain.KindBinary
	}
}
