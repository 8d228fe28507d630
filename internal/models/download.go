// Package models locates and downloads whisper.cpp ggml weights.
package models

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/chaz8081/gostt-batch/internal/progress"
)

// DefaultBaseURL is the HuggingFace repository hosting ggml weights.
const DefaultBaseURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main"

// ErrNotDownloaded is returned when weights are missing and downloading is off.
var ErrNotDownloaded = errors.New("model weights not downloaded")

const mib = 1024 * 1024

// Store is a directory of model weights.
type Store struct {
	Dir     string
	BaseURL string       // empty means DefaultBaseURL
	Client  *http.Client // nil means http.DefaultClient
	// Progress receives the download progress bar. Nil disables it.
	Progress io.Writer
}

// NewStore returns a Store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// Path returns where the weights for s live in the store.
func (st *Store) Path(s Spec) string {
	return filepath.Join(st.Dir, s.FileName())
}

// Find returns the path of already downloaded weights for s.
func (st *Store) Find(s Spec) (string, error) {
	path := st.Path(s)
	info, err := os.Stat(path)
	if err != nil || info.Size() == 0 {
		return "", fmt.Errorf("%w: %s (run 'gostt-batch models download %s --device %s')", ErrNotDownloaded, path, s.Name, s.Device)
	}
	return path, nil
}

// Ensure returns the weights path for s, downloading them first when they
// are missing and download is true.
func (st *Store) Ensure(ctx context.Context, s Spec, download bool) (string, error) {
	path, err := st.Find(s)
	if err == nil {
		return path, nil
	}
	if !download {
		return "", err
	}
	return st.Download(ctx, s)
}

// Download fetches the weights for s into the store. Existing non-empty
// files are kept. Data is written to a temp file and renamed into place.
func (st *Store) Download(ctx context.Context, s Spec) (string, error) {
	if err := os.MkdirAll(st.Dir, 0755); err != nil {
		return "", fmt.Errorf("creating models dir: %w", err)
	}

	destPath := st.Path(s)
	if info, err := os.Stat(destPath); err == nil && info.Size() > 0 {
		slog.Info("Model already exists", "path", destPath, "mb", info.Size()/mib)
		return destPath, nil
	}

	url := st.url(s)
	slog.Info("Downloading model", "model", s.String(), "url", url, "dest", destPath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("building request: %w", err)
	}

	client := st.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", s.FileName(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download %s failed: HTTP %d", s.FileName(), resp.StatusCode)
	}

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}

	var dst io.Writer = f
	var bar *progress.Bar
	if st.Progress != nil {
		bar = progress.New(st.Progress, float64(resp.ContentLength)/mib, s.FileName(), "MB")
		dst = &progressWriter{writer: f, bar: bar}
	}

	written, err := io.Copy(dst, resp.Body)
	if bar != nil {
		bar.Close()
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && resp.ContentLength > 0 && written != resp.ContentLength {
		err = fmt.Errorf("short download: got %d of %d bytes", written, resp.ContentLength)
	}
	if err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("writing model file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("moving model file: %w", err)
	}

	slog.Info("Model downloaded", "path", destPath, "mb", written/mib)
	return destPath, nil
}

// Entry describes one catalog model as seen in the store.
type Entry struct {
	Spec    Spec
	Path    string
	Present bool
}

// List reports every catalog model for device and whether its weights are
// present in the store.
func (st *Store) List(device string) ([]Entry, error) {
	entries := make([]Entry, 0, len(catalog))
	for _, name := range Names() {
		s, err := Resolve(name, device)
		if err != nil {
			return nil, err
		}
		_, err = st.Find(s)
		entries = append(entries, Entry{Spec: s, Path: st.Path(s), Present: err == nil})
	}
	return entries, nil
}

func (st *Store) url(s Spec) string {
	base := st.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return base + "/" + s.FileName()
}

// progressWriter wraps an io.Writer and advances a progress bar in MB.
type progressWriter struct {
	writer  io.Writer
	bar     *progress.Bar
	written int64
}

func (pw *progressWriter) Write(p []byte) (int, error) {
	n, err := pw.writer.Write(p)
	pw.written += int64(n)
	pw.bar.Add(float64(n) / mib)
	return n, err
}
