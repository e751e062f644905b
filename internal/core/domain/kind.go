package domain

// ContentKind classifies raw input bytes into a processing category.
// The kind decides which extractor handles the input.
type ContentKind string

// Recognised content kinds.
const (
	// KindText is plain text and text-like formats (code, CSV, JSON).
	KindText ContentKind = "text"

	// KindMarkup is structured markup (HTML, XHTML) that needs tag stripping.
	KindMarkup ContentKind = "markup"

	// KindAudio is an audio container that needs transcription.
	KindAudio ContentKind = "audio"

	// KindVideo is a video container; its audio track is transcribed.
	KindVideo ContentKind = "video"

	// KindImage is a still image. No extractor exists for images.
	KindImage ContentKind = "image"

	// KindBinary is anything unrecognised. No extractor exists for it.
	KindBinary ContentKind = "binary"
)

// IsValid returns true if the kind is recognised.
func (k ContentKind) IsValid() bool {
	switch k {
	case KindText, KindMarkup, KindAudio, KindVideo, KindImage, KindBinary:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (k ContentKind) String() string {
	return string(k)
}

// Detection is the result of classifying raw bytes.
type Detection struct {
	// Kind is the detected content kind.
	Kind ContentKind

	// MIMEType is the sniffed or inferred MIME type.
	MIMEType string

	// Confidence is 1.0 for a signature match and lower for
	// extension-based fallbacks.
	Confidence float64
}
