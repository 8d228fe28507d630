// Package transcribe provides speech-to-text backends.
//
// A backend turns a 16 kHz mono WAV file into a Result whose Segments are
// produced lazily and can be read exactly once.
package transcribe

import (
	"context"
	"time"
)

// Task selects what the model does with the recognized speech.
type Task string

const (
	// TaskTranscribe keeps the spoken language.
	TaskTranscribe Task = "transcribe"
	// TaskTranslate translates the speech to English.
	TaskTranslate Task = "translate"
)

// Options are decoding parameters for a single transcription.
type Options struct {
	Language string // ISO 639-1 code, e.g. "es"
	Task     Task
	BeamSize int
	BestOf   int
	Threads  uint // 0 keeps the backend default
}

// DefaultOptions returns Spanish transcription with beam size 5 and best-of 5.
func DefaultOptions() Options {
	return Options{
		Language: "es",
		Task:     TaskTranscribe,
		BeamSize: 5,
		BestOf:   5,
	}
}

// Segment is a timed piece of recognized text.
type Segment struct {
	Start time.Duration
	End   time.Duration
	Text  string
}

// Result is the outcome of starting a transcription.
type Result struct {
	Language string
	Duration time.Duration // total audio duration
	Segments SegmentStream
}

// Transcriber converts audio files to timed text.
type Transcriber interface {
	// Transcribe starts transcribing a mono 16 kHz WAV file.
	Transcribe(ctx context.Context, audioPath string, opts Options) (*Result, error)
	// Close releases backend resources.
	Close() error
}
