// Package progress renders a single-line console progress indicator.
package progress

import (
	"fmt"
	"io"
	"os"
	"time"

	bubbles "github.com/charmbracelet/bubbles/progress"
	"golang.org/x/term"
)

const redrawInterval = 100 * time.Millisecond

// Bar tracks progress towards a total and draws it on a writer. When the
// writer is a terminal the bar is redrawn in place; otherwise a single plain
// line is written on Close.
type Bar struct {
	w     io.Writer
	desc  string
	unit  string
	total float64
	cur   float64

	tty      bool
	model    bubbles.Model
	lastDraw time.Time
	closed   bool
}

// New returns a Bar for total units. desc prefixes the line, unit follows
// the counters ("sec", "MB").
func New(w io.Writer, total float64, desc, unit string) *Bar {
	b := &Bar{
		w:     w,
		desc:  desc,
		unit:  unit,
		total: total,
	}
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b.tty = true
		b.model = bubbles.New(
			bubbles.WithDefaultGradient(),
			bubbles.WithWidth(barWidth(f)),
		)
	}
	return b
}

// Add advances the bar by delta. Negative or zero deltas are accepted; the
// drawn fraction is clamped to [0, 1].
func (b *Bar) Add(delta float64) {
	b.cur += delta
	if b.tty && time.Since(b.lastDraw) >= redrawInterval {
		b.draw()
	}
}

// Current returns the accumulated progress.
func (b *Bar) Current() float64 {
	return b.cur
}

// Fraction returns progress as a value in [0, 1].
func (b *Bar) Fraction() float64 {
	if b.total <= 0 {
		return 0
	}
	return clamp(b.cur / b.total)
}

// Close draws the final state and ends the line. Calling Close twice is a no-op.
func (b *Bar) Close() {
	if b.closed {
		return
	}
	b.closed = true
	if b.tty {
		b.draw()
		fmt.Fprintln(b.w)
		return
	}
	fmt.Fprintln(b.w, b.plain())
}

func (b *Bar) draw() {
	b.lastDraw = time.Now()
	fmt.Fprintf(b.w, "\r%s %s %s", b.desc, b.model.ViewAs(b.Fraction()), b.counters())
}

func (b *Bar) plain() string {
	return fmt.Sprintf("%s: %3.0f%% %s", b.desc, b.Fraction()*100, b.counters())
}

func (b *Bar) counters() string {
	return fmt.Sprintf("%.1f/%.1f %s", b.cur, b.total, b.unit)
}

func barWidth(f *os.File) int {
	cols, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 40
	}
	w := cols / 2
	if w < 10 {
		w = 10
	}
	if w > 60 {
		w = 60
	}
	return w
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
