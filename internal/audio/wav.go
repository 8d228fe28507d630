// Package audio decodes the normalized WAV files fed to the speech model.
package audio

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/go-audio/wav"
)

// ErrNotWAV is returned when a file is not a valid WAV container.
var ErrNotWAV = errors.New("not a valid WAV file")

// Clip is decoded mono PCM audio.
type Clip struct {
	Samples    []float32 // normalized to [-1.0, 1.0]
	SampleRate int
}

// Duration returns the playback length of the clip.
func (c Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(c.Samples)) * time.Second / time.Duration(c.SampleRate)
}

// LoadWAV decodes a PCM WAV file into float32 samples. Multi-channel audio is
// downmixed to mono by averaging channels.
func LoadWAV(path string) (Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return Clip{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return Clip{}, fmt.Errorf("decoding %s: %w", path, ErrNotWAV)
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Clip{}, fmt.Errorf("decoding %s: %w", path, err)
	}

	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}
	return Clip{
		Samples:    toMono(buf.Data, channels, int(dec.BitDepth)),
		SampleRate: buf.Format.SampleRate,
	}, nil
}

// toMono converts interleaved integer PCM to mono float32 in [-1.0, 1.0].
func toMono(data []int, channels, bitDepth int) []float32 {
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := float32(int64(1) << (bitDepth - 1))

	frames := len(data) / channels
	samples := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for c := 0; c < channels; c++ {
			sum += float32(data[i*channels+c]) / scale
		}
		s := sum / float32(channels)
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		samples[i] = s
	}
	return samples
}
