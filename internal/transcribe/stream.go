package transcribe

import (
	"errors"
	"io"
)

// ErrStreamConsumed is returned by Next after a stream has ended.
var ErrStreamConsumed = errors.New("transcribe: segment stream already consumed")

// SegmentStream is a finite, forward-only sequence of segments. Next returns
// io.EOF once after the last segment and ErrStreamConsumed on later calls.
// A stream cannot be rewound.
type SegmentStream interface {
	Next() (Segment, error)
	// Close abandons the stream and releases its producer.
	Close() error
}

// oneShot enforces single-pass semantics over a producer function.
type oneShot struct {
	next  func() (Segment, error)
	close func() error
	done  bool
	err   error
}

func (o *oneShot) Next() (Segment, error) {
	if o.done {
		return Segment{}, o.err
	}
	seg, err := o.next()
	switch {
	case err == io.EOF:
		o.done, o.err = true, ErrStreamConsumed
		return Segment{}, io.EOF
	case err != nil:
		o.done, o.err = true, err
		return Segment{}, err
	}
	return seg, nil
}

func (o *oneShot) Close() error {
	if !o.done {
		o.done, o.err = true, ErrStreamConsumed
	}
	if o.close != nil {
		c := o.close
		o.close = nil
		return c()
	}
	return nil
}

// NewSliceStream returns a SegmentStream over already computed segments.
func NewSliceStream(segs []Segment) SegmentStream {
	i := 0
	return &oneShot{next: func() (Segment, error) {
		if i >= len(segs) {
			return Segment{}, io.EOF
		}
		s := segs[i]
		i++
		return s, nil
	}}
}

// Collect drains s and returns every remaining segment.
func Collect(s SegmentStream) ([]Segment, error) {
	var out []Segment
	for {
		seg, err := s.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, seg)
	}
}
