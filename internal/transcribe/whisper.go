package transcribe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"

	whisper "github.com/ggerganov/whisper.cpp/bindings/go"

	"github.com/chaz8081/gostt-batch/internal/audio"
)

// ErrNoAudio is returned for a WAV file that decodes to zero samples.
var ErrNoAudio = errors.New("transcribe: audio contains no samples")

// decodeParams are the whisper_full parameters a transcription runs with.
type decodeParams struct {
	Strategy  whisper.SamplingStrategy
	BeamSize  int
	Language  string
	Translate bool
	Threads   int
}

// paramsFor maps Options onto whisper.cpp decoding parameters. A beam size
// above 1 selects beam search; otherwise decoding is greedy. whisper.cpp
// reads best_of only for greedy sampling, so BestOf is not forwarded.
func paramsFor(opts Options) decodeParams {
	p := decodeParams{
		Strategy:  whisper.SAMPLING_GREEDY,
		Language:  opts.Language,
		Translate: opts.Task == TaskTranslate,
		Threads:   int(opts.Threads),
	}
	if opts.BeamSize > 1 {
		p.Strategy = whisper.SAMPLING_BEAM_SEARCH
		p.BeamSize = opts.BeamSize
	}
	return p
}

// engine runs whisper_full over samples, calling emit for every new
// segment in order. keepGoing is polled before each encoder window.
type engine interface {
	full(p decodeParams, samples []float32, keepGoing func() bool, emit func(Segment)) error
	free()
}

// WhisperTranscriber wraps a whisper.cpp context for speech-to-text. It
// runs one transcription at a time.
type WhisperTranscriber struct {
	eng engine
}

// NewWhisperTranscriber loads a whisper model from the given path.
// The caller must call Close() when done.
func NewWhisperTranscriber(modelPath string) (*WhisperTranscriber, error) {
	ctx := whisper.Whisper_init(modelPath)
	if ctx == nil {
		return nil, fmt.Errorf("transcribe: load whisper model %q: init failed", modelPath)
	}
	return &WhisperTranscriber{eng: &cppEngine{ctx: ctx}}, nil
}

// Close releases the whisper model resources. Streams returned by
// Transcribe must be drained or closed first.
func (t *WhisperTranscriber) Close() error {
	if t.eng != nil {
		t.eng.free()
		t.eng = nil
	}
	return nil
}

// Transcribe decodes audioPath and starts inference on a background
// goroutine. Segments are handed over as whisper emits them, so the stream
// can be consumed while later audio is still being decoded.
func (t *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string, opts Options) (*Result, error) {
	clip, err := audio.LoadWAV(audioPath)
	if err != nil {
		return nil, fmt.Errorf("transcribe: %w", err)
	}
	if want := int(whisper.SampleRate); clip.SampleRate != want {
		return nil, fmt.Errorf("transcribe: %s is %d Hz, want %d Hz", audioPath, clip.SampleRate, want)
	}
	if len(clip.Samples) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoAudio, audioPath)
	}
	if t.eng == nil {
		return nil, errors.New("transcribe: transcriber is closed")
	}

	p := paramsFor(opts)
	slog.Debug("whisper params",
		"strategy", p.Strategy,
		"beam_size", p.BeamSize,
		"language", p.Language,
		"translate", p.Translate,
		"threads", p.Threads,
		"samples", len(clip.Samples))

	return &Result{
		Language: opts.Language,
		Duration: clip.Duration(),
		Segments: startStream(ctx, t.eng, p, clip.Samples),
	}, nil
}

// startStream runs whisper_full on its own goroutine and exposes the emitted
// segments as a one-shot stream. Processing stops at the next encoder
// window once the stream is closed or ctx is canceled.
func startStream(ctx context.Context, eng engine, p decodeParams, samples []float32) SegmentStream {
	segs := make(chan Segment)
	stop := make(chan struct{})
	errc := make(chan error, 1)

	go func() {
		defer close(segs)
		keepGoing := func() bool {
			select {
			case <-stop:
				return false
			case <-ctx.Done():
				return false
			default:
				return true
			}
		}
		emit := func(s Segment) {
			select {
			case segs <- s:
			case <-stop:
			case <-ctx.Done():
			}
		}
		errc <- eng.full(p, samples, keepGoing, emit)
	}()

	var once sync.Once
	shutdown := func() error {
		once.Do(func() { close(stop) })
		for range segs {
		}
		return nil
	}

	return &oneShot{
		next: func() (Segment, error) {
			select {
			case s, ok := <-segs:
				if ok {
					return s, nil
				}
				if ctx.Err() != nil {
					return Segment{}, ctx.Err()
				}
				if err := <-errc; err != nil {
					return Segment{}, fmt.Errorf("transcribe: process: %w", err)
				}
				return Segment{}, io.EOF
			case <-ctx.Done():
				_ = shutdown()
				return Segment{}, ctx.Err()
			}
		},
		close: shutdown,
	}
}

// cppEngine drives a whisper.cpp context through the low-level bindings.
type cppEngine struct {
	ctx *whisper.Context
}

func (e *cppEngine) full(p decodeParams, samples []float32, keepGoing func() bool, emit func(Segment)) error {
	params := e.ctx.Whisper_full_default_params(p.Strategy)
	if p.Language != "" {
		id := e.ctx.Whisper_lang_id(p.Language)
		if id < 0 {
			return fmt.Errorf("unknown language %q", p.Language)
		}
		if err := params.SetLanguage(id); err != nil {
			return fmt.Errorf("set language %q: %w", p.Language, err)
		}
	}
	params.SetTranslate(p.Translate)
	if p.Strategy == whisper.SAMPLING_BEAM_SEARCH {
		params.SetBeamSize(p.BeamSize)
	}
	if p.Threads > 0 {
		params.SetThreads(p.Threads)
	}
	params.SetPrintProgress(false)
	params.SetPrintRealtime(false)
	params.SetPrintTimestamps(false)
	slog.Debug("whisper_full", "params", params.String())

	return e.ctx.Whisper_full(params, samples, keepGoing, func(n int) {
		total := e.ctx.Whisper_full_n_segments()
		for i := total - n; i < total; i++ {
			emit(Segment{
				Start: centis(e.ctx.Whisper_full_get_segment_t0(i)),
				End:   centis(e.ctx.Whisper_full_get_segment_t1(i)),
				Text:  strings.TrimSpace(e.ctx.Whisper_full_get_segment_text(i)),
			})
		}
	}, nil)
}

func (e *cppEngine) free() {
	e.ctx.Whisper_free()
}

// centis converts whisper timestamps, counted in 10 ms ticks.
func centis(t int64) time.Duration {
	return time.Duration(t) * 10 * time.Millisecond
}
