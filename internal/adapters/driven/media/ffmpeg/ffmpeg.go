// Package ffmpeg provides a MediaTool adapter that shells out to the
// ffmpeg binary. Inputs and outputs go through temp files because many
// container formats are not seekable through pipes.
package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/corpus-cli/internal/core/domain"
	"github.com/custodia-labs/corpus-cli/internal/core/ports/driven"
	"github.com/custodia-labs/corpus-cli/internal/logger"
)

// Ensure Tool implements the interface.
var _ driven.MediaTool = (*Tool)(nil)

// waitDelay is how long a cancelled ffmpeg process gets to exit before
// it is killed.
const waitDelay = 5 * time.Second

// Tool runs ffmpeg as an external process.
type Tool struct {
	binary string
}

// New creates an ffmpeg tool. binary defaults to "ffmpeg" on $PATH.
func New(binary string) *Tool {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Tool{binary: binary}
}

// TranscodeAudio converts an audio container to mono 16-bit WAV at the
// requested sample rate.
func (t *Tool) TranscodeAudio(ctx context.Context, input []byte, opts driven.TranscodeOptions) ([]byte, error) {
	return t.toWAV(ctx, input, opts)
}

// DemuxAudio extracts and transcodes the audio track of a video
// container. ffmpeg picks the best audio stream with -vn.
func (t *Tool) DemuxAudio(ctx context.Context, input []byte, opts driven.TranscodeOptions) ([]byte, error) {
	return t.toWAV(ctx, input, opts, "-vn")
}

func (t *Tool) toWAV(ctx context.Context, input []byte, opts driven.TranscodeOptions, extraArgs ...string) ([]byte, error) {
	if len(input) == 0 {
		return nil, fmt.Errorf("%w: empty input", domain.ErrInvalidInput)
	}

	sampleRate := opts.SampleRate
	if sampleRate == 0 {
		sampleRate = 16000
	}

	dir, err := os.MkdirTemp("", "corpus-ffmpeg-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	inPath := filepath.Join(dir, "input")
	outPath := filepath.Join(dir, "output.wav")
	if err := os.WriteFile(inPath, input, 0600); err != nil {
		return nil, fmt.Errorf("writing input: %w", err)
	}

	args := []string{"-hide_banner", "-nostdin", "-y", "-i", inPath}
	args = append(args, extraArgs...)
	args = append(args,
		"-ac", "1",
		"-ar", strconv.Itoa(sampleRate),
		"-c:a", "pcm_s16le",
	)
	if opts.FastPath {
		// Cheapest possible decode: drop everything but the audio and
		// skip error resilience
		args = append(args, "-err_detect", "ignore_err")
	}
	args = append(args, outPath)

	if err := t.run(ctx, args); err != nil {
		return nil, err
	}

	wav, err := os.ReadFile(outPath)
	if err != nil {
		return nil, fmt.Errorf("reading output: %w", err)
	}
	return wav, nil
}

// ExtractSubtitles returns the first embedded subtitle track as WebVTT
// text, or domain.ErrNotFound when the container has none.
func (t *Tool) ExtractSubtitles(ctx context.Context, input []byte) (string, error) {
	if len(input) == 0 {
		return "", fmt.Errorf("%w: empty input", domain.ErrInvalidInput)
	}

	dir, err := os.MkdirTemp("", "corpus-ffmpeg-*")
	if err != nil {
		return "", fmt.Errorf("creating temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	inPath := filepath.Join(dir, "input")
	outPath := filepath.Join(dir, "subs.vtt")
	if err := os.WriteFile(inPath, input, 0600); err != nil {
		return "", fmt.Errorf("writing input: %w", err)
	}

	args := []string{
		"-hide_banner", "-nostdin", "-y",
		"-i", inPath,
		"-map", "0:s:0",
		"-f", "webvtt",
		outPath,
	}

	if err := t.run(ctx, args); err != nil {
		if errors.Is(err, domain.ErrCorruptInput) {
			return "", err
		}
		// No subtitle stream is the common case, not a failure
		return "", domain.ErrNotFound
	}

	subs, err := os.ReadFile(outPath)
	if err != nil {
		return "", fmt.Errorf("reading subtitles: %w", err)
	}
	if len(bytes.TrimSpace(subs)) == 0 {
		return "", domain.ErrNotFound
	}
	return string(subs), nil
}

// run executes ffmpeg, honouring ctx by killing the process. stderr is
// inspected to classify failures.
func (t *Tool) run(ctx context.Context, args []string) error {
	cmd := exec.CommandContext(ctx, t.binary, args...)
	cmd.WaitDelay = waitDelay

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	logger.Debug("Running %s %s", t.binary, strings.Join(args, " "))
	err := cmd.Run()
	if err == nil {
		return nil
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}

	msg := stderr.String()
	switch {
	case strings.Contains(msg, "Invalid data found"),
		strings.Contains(msg, "could not find codec parameters"),
		strings.Contains(msg, "moov atom not found"):
		return fmt.Errorf("%w: %s", domain.ErrCorruptInput, lastLine(msg))
	default:
		return fmt.Errorf("ffmpeg: %s: %w", lastLine(msg), err)
	}
}

// lastLine returns the final non-empty stderr line, which is where
// ffmpeg puts the actual error.
func lastLine(output string) string {
	lines := strings.Split(strings.TrimSpace(output), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return line
		}
	}
	return "unknown error"
}
