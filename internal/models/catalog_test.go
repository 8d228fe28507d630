package models

import (
	"errors"
	"testing"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name, device string
		wantPrec     Precision
		wantFile     string
	}{
		{"large-v2", "cpu", Int8, "ggml-large-v2-q8_0.bin"},
		{"large-v2", "cuda", Float16, "ggml-large-v2.bin"},
		{"large-v2", "metal", Float16, "ggml-large-v2.bin"},
		{"medium", "cpu", Int8, "ggml-medium-q8_0.bin"},
		{"large-v3", "cpu", Int5, "ggml-large-v3-q5_0.bin"},
		{"large-v1", "cpu", Float16, "ggml-large-v1.bin"},
		{"base.en", "cuda", Float16, "ggml-base.en.bin"},
	}

	for _, tt := range tests {
		t.Run(tt.name+"/"+tt.device, func(t *testing.T) {
			s, err := Resolve(tt.name, tt.device)
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			if s.Precision != tt.wantPrec {
				t.Errorf("Precision = %q, want %q", s.Precision, tt.wantPrec)
			}
			if s.FileName() != tt.wantFile {
				t.Errorf("FileName() = %q, want %q", s.FileName(), tt.wantFile)
			}
		})
	}
}

func TestResolveUnknownModel(t *testing.T) {
	_, err := Resolve("huge-v9", "cpu")
	if !errors.Is(err, ErrUnknownModel) {
		t.Errorf("Resolve() error = %v, want ErrUnknownModel", err)
	}
}

func TestResolveUnsupportedDevice(t *testing.T) {
	_, err := Resolve("large-v2", "tpu")
	if !errors.Is(err, ErrUnsupportedDevice) {
		t.Errorf("Resolve() error = %v, want ErrUnsupportedDevice", err)
	}
}

func TestMultilingual(t *testing.T) {
	en, _ := Resolve("base.en", "cpu")
	if en.Multilingual() {
		t.Error("base.en should not be multilingual")
	}
	ml, _ := Resolve("large-v2", "cpu")
	if !ml.Multilingual() {
		t.Error("large-v2 should be multilingual")
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) != len(catalog) {
		t.Fatalf("Names() returned %d names, want %d", len(names), len(catalog))
	}
	found := false
	for _, n := range names {
		if n == "large-v2" {
			found = true
		}
	}
	if !found {
		t.Error("Names() should include large-v2")
	}
}
