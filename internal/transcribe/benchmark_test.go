package transcribe

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chaz8081/gostt-batch/internal/score"
)

// benchSample holds a 16 kHz mono clip and its reference transcript.
type benchSample struct {
	Label      string `json:"label"`
	File       string `json:"file"`
	Transcript string `json:"transcript"`
}

// loadBenchSamples reads testdata/references.json. The benchmark is skipped
// when no references are present.
func loadBenchSamples(b *testing.B) []benchSample {
	b.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", "references.json"))
	if err != nil {
		b.Skipf("no benchmark references: %v", err)
	}
	var refs struct {
		Samples []benchSample `json:"samples"`
	}
	if err := json.Unmarshal(data, &refs); err != nil {
		b.Fatalf("parse references.json: %v", err)
	}
	return refs.Samples
}

func BenchmarkWhisperTranscribe(b *testing.B) {
	samples := loadBenchSamples(b)
	modelPath := whisperModelPath(b)

	tr, err := NewWhisperTranscriber(modelPath)
	if err != nil {
		b.Fatalf("NewWhisperTranscriber: %v", err)
	}
	defer func() { _ = tr.Close() }()

	for _, s := range samples {
		wavPath := filepath.Join("testdata", s.File)
		b.Run(s.Label, func(b *testing.B) {
			var text string
			var audioSec float64
			for i := 0; i < b.N; i++ {
				res, err := tr.Transcribe(context.Background(), wavPath, DefaultOptions())
				if err != nil {
					b.Fatalf("Transcribe: %v", err)
				}
				segs, err := Collect(res.Segments)
				if err != nil {
					b.Fatalf("Collect: %v", err)
				}
				texts := make([]string, len(segs))
				for j, seg := range segs {
					texts[j] = seg.Text
				}
				text = strings.TrimSpace(strings.Join(texts, " "))
				audioSec = res.Duration.Seconds()
			}
			b.StopTimer()

			if audioSec > 0 {
				b.ReportMetric((b.Elapsed().Seconds()/float64(b.N))/audioSec, "rtf")
			}
			b.ReportMetric(score.WER(s.Transcript, text, score.Options{}).WER, "wer")
		})
	}
}
