package driven

import "context"

// TranscodeOptions configures a media transcode step.
type TranscodeOptions struct {
	// SampleRate is the output sample rate in Hz (16000 for the normal
	// path, lower on the reduced-fidelity fast path).
	SampleRate int

	// FastPath trades quality for speed after a timeout.
	FastPath bool
}

// MediaTool runs an external media processor (ffmpeg) to prepare audio
// for transcription. Every call honours ctx cancellation by killing the
// external process; no orphans survive cancellation.
type MediaTool interface {
	// TranscodeAudio converts an audio container to mono 16-bit WAV.
	TranscodeAudio(ctx context.Context, input []byte, opts TranscodeOptions) ([]byte, error)

	// DemuxAudio extracts and transcodes the audio track of a video
	// container to mono 16-bit WAV.
	DemuxAudio(ctx context.Context, input []byte, opts TranscodeOptions) ([]byte, error)

	// ExtractSubtitles returns the first embedded subtitle track as
	// plain text, or domain.ErrNotFound when the container has none.
	ExtractSubtitles(ctx context.Context, input []byte) (string, error)
}

// TranscriptSegment is one timestamped span of a transcript.
type TranscriptSegment struct {
	// Start and End are offsets into the audio, in seconds.
	Start float64
	End   float64

	// Text is the transcribed text of the segment.
	Text string
}

// Transcript is the output of speech-to-text.
type Transcript struct {
	// Text is the full transcript.
	Text string

	// Segments are the timestamped spans, in order. May be empty when
	// the backend returns only plain text.
	Segments []TranscriptSegment
}

// Transcriber converts audio bytes into a transcript via an external
// speech-to-text service.
type Transcriber interface {
	// Transcribe sends WAV audio to the service. language is an optional
	// BCP-47 hint; empty means autodetect.
	Transcribe(ctx context.Context, audio []byte, language string) (*Transcript, error)

	// ModelName returns the transcription model identifier.
	ModelName() string
}
