// Package video extracts text from video containers. An embedded
// subtitle track is used when present; otherwise the audio track is
// demuxed and delegated to the audio extractor.
package video

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpus-cli/internal/extractors/audio"
	"github.com/custodia-labs/corpus-cli/internal/extractors/text"
	"github.com/custodia-labs/corpus-cli/internal/logger"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// Extractor handles video content.
type Extractor struct {
	media   driven.MediaTool
	audio   *audio.Extractor
	timeout time.Duration
}

// New creates a new video extractor. The audio extractor handles
// transcription after demuxing.
func New(media driven.MediaTool, audioExtractor *audio.Extractor, timeout time.Duration) *Extractor {
	return &Extractor{
		media:   media,
		audio:   audioExtractor,
		timeout: timeout,
	}
}

// Kinds returns the content kinds this extractor handles.
func (e *Extractor) Kinds() []domain.ContentKind {
	return []domain.ContentKind{domain.KindVideo}
}

// Priority returns the selection priority.
func (e *Extractor) Priority() int {
	return 50
}

// Extract prefers an embedded subtitle track, then falls back to
// demux-and-transcribe.
func (e *Extractor) Extract(ctx context.Context, raw *domain.RawInput) (*driven.ExtractResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	if result, ok := e.trySubtitles(ctx, raw.Content); ok {
		return result, nil
	}

	wav, degraded, err := e.demuxWithRetry(ctx, raw.Content)
	if err != nil {
		return nil, err
	}

	result, err := e.audio.ExtractFromWAV(ctx, wav)
	if err != nil {
		return nil, err
	}
	result.Degraded = result.Degraded || degraded
	return result, nil
}

// trySubtitles extracts an embedded subtitle track if one exists.
// Subtitle failures are never fatal; the audio path still runs.
func (e *Extractor) trySubtitles(ctx context.Context, input []byte) (*driven.ExtractResult, bool) {
	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	raw, err := e.media.ExtractSubtitles(callCtx, input)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Debug("Subtitle extraction failed: %v", err)
		}
		return nil, false
	}

	cleaned := CleanSubtitles(raw)
	if cleaned == "" {
		return nil, false
	}

	logger.Debug("Using embedded subtitle track (%d bytes)", len(cleaned))
	return &driven.ExtractResult{
		Text:       cleaned,
		Boundaries: text.ParagraphBoundaries(cleaned),
	}, true
}

// demuxWithRetry mirrors the audio extractor's fast-path retry for the
// demux step.
func (e *Extractor) demuxWithRetry(ctx context.Context, input []byte) ([]byte, bool, error) {
	demux := func(ctx context.Context, opts driven.TranscodeOptions) ([]byte, error) {
		callCtx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()
		return e.media.DemuxAudio(callCtx, input, opts)
	}

	wav, err := demux(ctx, driven.TranscodeOptions{SampleRate: 16000})
	if err == nil {
		return wav, false, nil
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		return nil, false, err
	}

	logger.Warn("Demux timed out, retrying on fast path")
	wav, err = demux(ctx, driven.TranscodeOptions{SampleRate: 8000, FastPath: true})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, false, domain.ErrExtractionTimeout
		}
		return nil, false, err
	}
	return wav, true, nil
}

// CleanSubtitles strips WebVTT/SRT cue metadata, leaving dialogue text
// with one line per cue.
func CleanSubtitles(raw string) string {
	var sb strings.Builder
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "",
			line == "WEBVTT",
			strings.Contains(line, "-->"),
			isCueIndex(line):
			continue
		}
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// isCueIndex reports whether the line is a bare SRT cue number.
func isCueIndex(line string) bool {
	if line == "" {
		return false
	}
	for _, r := range line {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
