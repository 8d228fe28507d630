package score

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWER(t *testing.T) {
	tests := []struct {
		name       string
		reference  string
		hypothesis string
		opts       Options
		wantWER    float64
		wantSubs   int
		wantIns    int
		wantDels   int
		wantRef    int
	}{
		{
			name:       "identical",
			reference:  "hola mundo desde la radio",
			hypothesis: "hola mundo desde la radio",
			wantWER:    0.0,
			wantRef:    5,
		},
		{
			name:       "one_substitution",
			reference:  "el gato se sentó en la alfombra",
			hypothesis: "el perro se sentó en la alfombra",
			wantWER:    1.0 / 7.0,
			wantSubs:   1,
			wantRef:    7,
		},
		{
			name:       "one_insertion",
			reference:  "el gato duerme",
			hypothesis: "el gato negro duerme",
			wantWER:    1.0 / 3.0,
			wantIns:    1,
			wantRef:    3,
		},
		{
			name:       "one_deletion",
			reference:  "la estructura a gran escala",
			hypothesis: "la estructura gran escala",
			wantWER:    1.0 / 5.0,
			wantDels:   1,
			wantRef:    5,
		},
		{
			name:       "case_insensitive",
			reference:  "Vía Láctea",
			hypothesis: "vía láctea",
			wantWER:    0.0,
			wantRef:    2,
		},
		{
			name:       "spanish_punctuation_stripped",
			reference:  "¿Qué es una galaxia? ¡Enorme!",
			hypothesis: "qué es una galaxia enorme",
			wantWER:    0.0,
			wantRef:    5,
		},
		{
			name:       "accents_count_without_folding",
			reference:  "la canción",
			hypothesis: "la cancion",
			wantWER:    1.0 / 2.0,
			wantSubs:   1,
			wantRef:    2,
		},
		{
			name:       "accents_folded",
			reference:  "la canción del corazón",
			hypothesis: "la cancion del corazon",
			opts:       Options{FoldAccents: true},
			wantWER:    0.0,
			wantRef:    4,
		},
		{
			name:       "empty_reference",
			reference:  "",
			hypothesis: "algunas palabras",
			wantWER:    0.0,
			wantRef:    0,
		},
		{
			name:       "empty_hypothesis",
			reference:  "algunas palabras",
			hypothesis: "",
			wantWER:    1.0,
			wantDels:   2,
			wantRef:    2,
		},
		{
			name:       "extra_whitespace",
			reference:  "  el   gato  duerme  ",
			hypothesis: "el gato duerme",
			wantWER:    0.0,
			wantRef:    3,
		},
		{
			name:       "mixed_errors",
			reference:  "el rápido zorro marrón salta sobre el perro perezoso",
			hypothesis: "un rápido gato marrón salta el perro perezoso",
			// sub: el->un, zorro->gato; del: sobre
			wantWER:  3.0 / 9.0,
			wantSubs: 2,
			wantDels: 1,
			wantRef:  9,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := WER(tt.reference, tt.hypothesis, tt.opts)

			if diff := got.WER - tt.wantWER; diff > 0.001 || diff < -0.001 {
				t.Errorf("WER = %f, want %f", got.WER, tt.wantWER)
			}
			if got.RefWords != tt.wantRef {
				t.Errorf("RefWords = %d, want %d", got.RefWords, tt.wantRef)
			}
			if got.Substitutions != tt.wantSubs {
				t.Errorf("Substitutions = %d, want %d", got.Substitutions, tt.wantSubs)
			}
			if got.Insertions != tt.wantIns {
				t.Errorf("Insertions = %d, want %d", got.Insertions, tt.wantIns)
			}
			if got.Deletions != tt.wantDels {
				t.Errorf("Deletions = %d, want %d", got.Deletions, tt.wantDels)
			}
		})
	}
}

func TestWERFiles(t *testing.T) {
	dir := t.TempDir()
	ref := filepath.Join(dir, "ref.txt")
	hyp := filepath.Join(dir, "hyp.txt")
	if err := os.WriteFile(ref, []byte("Hola mundo"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(hyp, []byte("hola"), 0644); err != nil {
		t.Fatal(err)
	}

	got, err := WERFiles(ref, hyp, Options{})
	if err != nil {
		t.Fatalf("WERFiles() error = %v", err)
	}
	if got.Deletions != 1 || got.RefWords != 2 {
		t.Errorf("WERFiles() = %+v, want 1 deletion of 2 words", got)
	}
	if !strings.Contains(got.String(), "WER 50.00%") {
		t.Errorf("String() = %q, want it to contain %q", got.String(), "WER 50.00%")
	}

	if _, err := WERFiles(filepath.Join(dir, "missing.txt"), hyp, Options{}); err == nil {
		t.Error("WERFiles() should fail for a missing reference")
	}
}
