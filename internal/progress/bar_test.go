package progress

import (
	"bytes"
	"strings"
	"testing"
)

func TestBarAccumulates(t *testing.T) {
	var buf bytes.Buffer
	b := New(&buf, 4.5, "Processing audio", "sec")

	last := 0.0
	for _, end := range []float64{2.0, 4.5, 4.5} {
		b.Add(end - last)
		last = end
	}

	if b.Current() != 4.5 {
		t.Errorf("Current() = %f, want 4.5", b.Current())
	}
	if b.Fraction() != 1 {
		t.Errorf("Fraction() = %f, want 1", b.Fraction())
	}
	if buf.Len() != 0 {
		t.Errorf("non-terminal writer got output before Close: %q", buf.String())
	}

	b.Close()
	out := buf.String()
	if !strings.Contains(out, "Processing audio") {
		t.Errorf("output %q should contain the description", out)
	}
	if !strings.Contains(out, "100%") {
		t.Errorf("output %q should report 100%%", out)
	}
	if !strings.Contains(out, "4.5/4.5 sec") {
		t.Errorf("output %q should contain counters", out)
	}
}

func TestBarOutOfOrderIsNotFatal(t *testing.T) {
	var buf bytes.Buffer
	b := New(&buf, 10, "x", "sec")

	b.Add(5)
	b.Add(-8)
	if b.Current() != -3 {
		t.Errorf("Current() = %f, want -3", b.Current())
	}
	if b.Fraction() != 0 {
		t.Errorf("Fraction() = %f, want 0 (clamped)", b.Fraction())
	}

	b.Add(20)
	if b.Fraction() != 1 {
		t.Errorf("Fraction() = %f, want 1 (clamped)", b.Fraction())
	}
}

func TestBarZeroTotal(t *testing.T) {
	var buf bytes.Buffer
	b := New(&buf, 0, "x", "sec")
	b.Add(1)
	if b.Fraction() != 0 {
		t.Errorf("Fraction() = %f, want 0 for zero total", b.Fraction())
	}
}

func TestBarCloseTwice(t *testing.T) {
	var buf bytes.Buffer
	b := New(&buf, 1, "x", "sec")
	b.Close()
	first := buf.String()
	b.Close()
	if buf.String() != first {
		t.Errorf("second Close() wrote more output: %q", buf.String())
	}
}
