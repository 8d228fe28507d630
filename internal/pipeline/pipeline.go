// Package pipeline drives a single transcription job: resample the source
// with ffmpeg, run the speech model over it and write the transcript.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/chaz8081/gostt-batch/internal/models"
	"github.com/chaz8081/gostt-batch/internal/naming"
	"github.com/chaz8081/gostt-batch/internal/progress"
	"github.com/chaz8081/gostt-batch/internal/transcribe"
)

// Normalizer resamples src into a 16 kHz mono WAV at dst.
type Normalizer interface {
	Normalize(ctx context.Context, src, dst string) error
}

// Loader loads the model described by spec.
type Loader func(ctx context.Context, spec models.Spec) (transcribe.Transcriber, error)

// WhisperLoader returns a Loader that takes weights from store, downloading
// missing ones when download is true.
func WhisperLoader(store *models.Store, download bool) Loader {
	return func(ctx context.Context, spec models.Spec) (transcribe.Transcriber, error) {
		path, err := store.Ensure(ctx, spec, download)
		if err != nil {
			return nil, err
		}
		return transcribe.NewWhisperTranscriber(path)
	}
}

// Job is one transcription request.
type Job struct {
	Source string // audio file to transcribe
	Label  string // output name prefix
	Device string // "cpu", "cuda" or "metal"
	Model  string // catalog model size, e.g. "large-v2"
}

// Result describes the artifacts of a finished job.
type Result struct {
	WAVPath        string
	TranscriptPath string
	Text           string
	Segments       int
	Duration       time.Duration
}

// Runner executes jobs. A Runner holds no per-job state and can run any
// number of jobs one after another.
type Runner struct {
	Normalizer Normalizer
	Load       Loader
	Options    transcribe.Options

	RecordsDir        string // relative to the source file's directory
	TranscriptionsDir string

	Progress io.Writer // nil discards the progress bar
	Logger   *slog.Logger
}

// NewRunner returns a Runner with default decoding options and the
// "records" and "transcriptions" output directories.
func NewRunner(n Normalizer, load Loader) *Runner {
	return &Runner{
		Normalizer:        n,
		Load:              load,
		Options:           transcribe.DefaultOptions(),
		RecordsDir:        "records",
		TranscriptionsDir: "transcriptions",
	}
}

// Run transcribes job.Source. Any failure aborts the job; files written
// before the failure are left in place.
func (r *Runner) Run(ctx context.Context, job Job) (*Result, error) {
	log := r.Logger
	if log == nil {
		log = slog.Default()
	}

	if job.Label == "" {
		return nil, errors.New("pipeline: label must not be empty")
	}
	src, err := filepath.Abs(job.Source)
	if err != nil {
		return nil, fmt.Errorf("pipeline: resolving %q: %w", job.Source, err)
	}
	if _, err := os.Stat(src); err != nil {
		return nil, fmt.Errorf("pipeline: source: %w", err)
	}

	spec, err := models.Resolve(job.Model, job.Device)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	opts := r.options(spec)
	if !spec.Multilingual() && opts.Language != "en" {
		return nil, fmt.Errorf("pipeline: model %s is English-only, cannot transcribe %q", spec.Name, opts.Language)
	}

	records, transcriptions, err := r.ensureDirs(src)
	if err != nil {
		return nil, err
	}

	wavName, err := naming.Derive(src, job.Label, "wav")
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	wavPath := filepath.Join(records, wavName)

	log.Info("Normalizing audio", "src", src, "dst", wavPath)
	if err := r.Normalizer.Normalize(ctx, src, wavPath); err != nil {
		return nil, fmt.Errorf("pipeline: normalize: %w", err)
	}

	log.Info("Loading model", "model", spec.String(), "file", spec.FileName())
	start := time.Now()
	tr, err := r.Load(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("pipeline: load model: %w", err)
	}
	defer func() { _ = tr.Close() }()
	log.Info("Model loaded", "elapsed", time.Since(start).Round(time.Millisecond))

	res, err := tr.Transcribe(ctx, wavPath, opts)
	if err != nil {
		return nil, fmt.Errorf("pipeline: transcribe: %w", err)
	}
	defer func() { _ = res.Segments.Close() }()

	text, n, err := r.consume(res)
	if err != nil {
		return nil, fmt.Errorf("pipeline: transcribe: %w", err)
	}

	txtName, err := naming.Derive(src, job.Label, "txt")
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	txtPath := filepath.Join(transcriptions, txtName)
	if err := os.WriteFile(txtPath, []byte(text), 0644); err != nil {
		return nil, fmt.Errorf("pipeline: writing transcript: %w", err)
	}
	log.Info("Transcript written", "path", txtPath, "segments", n, "audio", res.Duration.Round(time.Second))

	return &Result{
		WAVPath:        wavPath,
		TranscriptPath: txtPath,
		Text:           text,
		Segments:       n,
		Duration:       res.Duration,
	}, nil
}

// consume reads the segment stream once, advancing the progress bar by the
// gap between consecutive segment end times. Segment order is not checked.
func (r *Runner) consume(res *transcribe.Result) (string, int, error) {
	w := r.Progress
	if w == nil {
		w = io.Discard
	}
	bar := progress.New(w, res.Duration.Seconds(), "Processing audio", "sec")
	defer bar.Close()

	var texts []string
	var lastEnd time.Duration
	for {
		seg, err := res.Segments.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", len(texts), err
		}
		texts = append(texts, seg.Text)
		bar.Add((seg.End - lastEnd).Seconds())
		lastEnd = seg.End
	}
	return strings.TrimSpace(strings.Join(texts, " ")), len(texts), nil
}

func (r *Runner) ensureDirs(src string) (records, transcriptions string, err error) {
	parent := filepath.Dir(src)
	records = filepath.Join(parent, r.RecordsDir)
	transcriptions = filepath.Join(parent, r.TranscriptionsDir)
	for _, dir := range []string{records, transcriptions} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", "", fmt.Errorf("pipeline: creating %s: %w", dir, err)
		}
	}
	return records, transcriptions, nil
}

// options fills in the thread count for CPU inference when unset.
func (r *Runner) options(spec models.Spec) transcribe.Options {
	opts := r.Options
	if opts.Threads == 0 && spec.Device == "cpu" {
		opts.Threads = uint(runtime.NumCPU())
	}
	return opts
}
