// Package audio extracts text from audio containers by transcoding to
// WAV with an external media tool and delegating to a transcription
// service. Transcript segments become section boundaries.
package audio

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpus-cli/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Sample rates for the normal and reduced-fidelity paths.
const (
	normalSampleRate   = 16000
	fastPathSampleRate = 8000
)

// Extractor handles audio content.
type Extractor struct {
	media       driven.MediaTool
	transcriber driven.Transcriber
	timeout     time.Duration
	language    string
}

// New creates a new audio extractor. timeout bounds each external call
// (transcode and transcription separately, so one slow stage does not
// mask the other's budget).
func New(media driven.MediaTool, transcriber driven.Transcriber, timeout time.Duration, language string) *Extractor {
	return &Extractor{
		media:       media,
		transcriber: transcriber,
		timeout:     timeout,
		language:    language,
	}
}

// Kinds returns the content kinds this extractor handles.
func (e *Extractor) Kinds() []domain.ContentKind {
	return []domain.ContentKind{domain.KindAudio}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50
}

// Extract transcodes the input and transcribes it. A timed-out
// transcode is retried once on the reduced-fidelity fast path; success
// on that path yields a degraded result.
func (e *Extractor) Extract(ctx context.Context, raw *domain.RawInput) (*driven.ExtractResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	wav, degraded, err := e.transcodeWithRetry(ctx, raw.Content, e.media.TranscodeAudio)
	if err != nil {
		return nil, err
	}

	result, err := e.ExtractFromWAV(ctx, wav)
	if err != nil {
		return nil, err
	}
	result.Degraded = result.Degraded || degraded
	return result, nil
}

// transcodeFunc is either TranscodeAudio or DemuxAudio.
type transcodeFunc func(ctx context.Context, input []byte, opts driven.TranscodeOptions) ([]byte, error)

// transcodeWithRetry runs one transcode attempt at full quality and, on
// timeout, one more on the fast path. The returned bool reports whether
// the fast path produced the audio.
func (e *Extractor) transcodeWithRetry(ctx context.Context, input []byte, fn transcodeFunc) ([]byte, bool, error) {
	wav, err := e.timedTranscode(ctx, input, fn, driven.TranscodeOptions{SampleRate: normalSampleRate})
	if err == nil {
		return wav, false, nil
	}
	if !isTimeout(err) {
		return nil, false, err
	}

	logger.Warn("Transcode timed out, retrying on fast path")
	wav, err = e.timedTranscode(ctx, input, fn, driven.TranscodeOptions{
		SampleRate: fastPathSampleRate,
		FastPath:   true,
	})
	if err != nil {
		if isTimeout(err) {
			return nil, false, fmt.Errorf("%w: transcode exceeded budget twice", domain.ErrExtractionTimeout)
		}
		return nil, false, err
	}
	return wav, true, nil
}

func (e *Extractor) timedTranscode(
	ctx context.Context, input []byte, fn transcodeFunc, opts driven.TranscodeOptions,
) ([]byte, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return fn(callCtx, input, opts)
}

// ExtractFromWAV transcribes prepared WAV audio. Exposed so the video
// extractor can delegate after demuxing.
func (e *Extractor) ExtractFromWAV(ctx context.Context, wav []byte) (*driven.ExtractResult, error) {
	transcript, err := e.timedTranscribe(ctx, wav)
	if err != nil {
		if !isTimeout(err) {
			return nil, err
		}
		// One retry; the service may have been transiently slow
		logger.Warn("Transcription timed out, retrying once")
		transcript, err = e.timedTranscribe(ctx, wav)
		if err != nil {
			if isTimeout(err) {
				return nil, fmt.Errorf("%w: transcription exceeded budget twice", domain.ErrExtractionTimeout)
			}
			return nil, err
		}
	}

	text, boundaries := AssembleTranscript(transcript)
	if text == "" {
		return &driven.ExtractResult{}, nil
	}

	return &driven.ExtractResult{
		Text:       text,
		Boundaries: boundaries,
	}, nil
}

func (e *Extractor) timedTranscribe(ctx context.Context, wav []byte) (*driven.Transcript, error) {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	return e.transcriber.Transcribe(callCtx, wav, e.language)
}

// AssembleTranscript flattens a transcript into text with one line per
// segment; segment starts become section boundaries.
func AssembleTranscript(t *driven.Transcript) (string, []int) {
	if t == nil {
		return "", nil
	}
	if len(t.Segments) == 0 {
		text := strings.TrimSpace(t.Text)
		if text == "" {
			return "", nil
		}
		return text + "\n", []int{0}
	}

	var sb strings.Builder
	var boundaries []int
	for _, seg := range t.Segments {
		line := strings.TrimSpace(seg.Text)
		if line == "" {
			continue
		}
		boundaries = append(boundaries, sb.Len())
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String(), boundaries
}

// isTimeout reports whether an external call exceeded its budget.
func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, domain.ErrExtractionTimeout)
}
