// Package media wraps the external ffmpeg binary used to prepare audio for
// the speech model.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
)

const (
	// SampleRate is the rate whisper models expect, in Hz.
	SampleRate = 16000
	// Channels is the channel count whisper models expect.
	Channels = 1

	stderrTail = 2048
)

// ErrFFmpeg is wrapped by every error caused by the ffmpeg invocation.
var ErrFFmpeg = errors.New("ffmpeg failed")

// FFmpeg resamples audio files by running the ffmpeg binary.
type FFmpeg struct {
	// Binary is the executable name or path. Empty means "ffmpeg".
	Binary string
}

// NewFFmpeg returns an FFmpeg that runs binary.
func NewFFmpeg(binary string) *FFmpeg {
	return &FFmpeg{Binary: binary}
}

// Normalize converts src to a 16 kHz mono WAV at dst, overwriting dst if it
// exists. A non-zero exit is returned as an error wrapping ErrFFmpeg with the
// tail of ffmpeg's stderr. Partial output is left in place.
func (f *FFmpeg) Normalize(ctx context.Context, src, dst string) error {
	bin := f.Binary
	if bin == "" {
		bin = "ffmpeg"
	}

	args := Args(src, dst)
	slog.Debug("running ffmpeg", "bin", bin, "args", strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, bin, args...) //nolint:gosec // binary comes from local config
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%w: %w", ErrFFmpeg, ctx.Err())
		}
		return fmt.Errorf("%w: %w: %s", ErrFFmpeg, err, tail(stderr.String()))
	}
	return nil
}

// Args returns the ffmpeg arguments that resample src into dst.
func Args(src, dst string) []string {
	return []string{
		"-hide_banner",
		"-y",
		"-i", src,
		"-ar", strconv.Itoa(SampleRate),
		"-ac", strconv.Itoa(Channels),
		dst,
	}
}

func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > stderrTail {
		s = "..." + s[len(s)-stderrTail:]
	}
	return s
}
