package transcribe

import (
	"errors"
	"io"
	"testing"
	"time"
)

func TestSliceStreamYieldsInOrder(t *testing.T) {
	s := NewSliceStream([]Segment{
		{End: 2 * time.Second, Text: "Hola"},
		{Start: 2 * time.Second, End: 4500 * time.Millisecond, Text: "mundo"},
	})

	first, err := s.Next()
	if err != nil || first.Text != "Hola" {
		t.Fatalf("Next() = %+v, %v; want Hola", first, err)
	}
	second, err := s.Next()
	if err != nil || second.Text != "mundo" {
		t.Fatalf("Next() = %+v, %v; want mundo", second, err)
	}
	if _, err := s.Next(); err != io.EOF {
		t.Fatalf("Next() at end error = %v, want io.EOF", err)
	}
}

func TestStreamIsOneShot(t *testing.T) {
	s := NewSliceStream([]Segment{{Text: "uno"}})

	got, err := Collect(s)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Collect() returned %d segments, want 1", len(got))
	}

	for i := 0; i < 2; i++ {
		if _, err := s.Next(); !errors.Is(err, ErrStreamConsumed) {
			t.Errorf("Next() after end error = %v, want ErrStreamConsumed", err)
		}
	}
	again, err := Collect(s)
	if !errors.Is(err, ErrStreamConsumed) || len(again) != 0 {
		t.Errorf("second Collect() = %v, %v; want nothing and ErrStreamConsumed", again, err)
	}
}

func TestStreamCloseAbandons(t *testing.T) {
	closed := 0
	s := &oneShot{
		next:  func() (Segment, error) { return Segment{Text: "x"}, nil },
		close: func() error { closed++; return nil },
	}

	if _, err := s.Next(); err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	if closed != 1 {
		t.Errorf("producer closed %d times, want 1", closed)
	}
	if _, err := s.Next(); !errors.Is(err, ErrStreamConsumed) {
		t.Errorf("Next() after Close error = %v, want ErrStreamConsumed", err)
	}
}

func TestStreamProducerErrorIsSticky(t *testing.T) {
	boom := errors.New("decoder blew up")
	calls := 0
	s := &oneShot{next: func() (Segment, error) {
		calls++
		return Segment{}, boom
	}}

	if _, err := s.Next(); !errors.Is(err, boom) {
		t.Fatalf("Next() error = %v, want %v", err, boom)
	}
	if _, err := s.Next(); !errors.Is(err, boom) {
		t.Fatalf("second Next() error = %v, want %v", err, boom)
	}
	if calls != 1 {
		t.Errorf("producer called %d times, want 1", calls)
	}
}

func TestDefaultOptions(t *testing.T) {
	o := DefaultOptions()
	if o.Language != "es" || o.Task != TaskTranscribe || o.BeamSize != 5 || o.BestOf != 5 {
		t.Errorf("DefaultOptions() = %+v", o)
	}
}
