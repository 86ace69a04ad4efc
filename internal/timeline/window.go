// Package timeline maps between absolute media time and positions on the
// full and zoomed timelines, and resolves interval-edge drags.
package timeline

import (
	"errors"
	"math"
)

// MinWidth is the narrowest zoom window, as a fraction of total duration.
const MinWidth = 0.01

// LongMediaThreshold is the duration from which a new session opens zoomed in.
const LongMediaThreshold = 600.0

var (
	// ErrWindowTooNarrow is returned when a boundary drag would leave less than MinWidth.
	ErrWindowTooNarrow = errors.New("zoom window narrower than minimum width")
	// ErrWindowInverted is returned when a boundary drag would cross the other boundary.
	ErrWindowInverted = errors.New("zoom window start must precede end")
)

// Window is the zoomed sub-range, as fractions of total duration.
type Window struct {
	Start float64
	End   float64
}

// FullWindow shows the whole timeline.
func FullWindow() Window { return Window{Start: 0, End: 1} }

// DefaultWindow shows the first fifth of long media and all of short media.
func DefaultWindow(duration float64) Window {
	if duration >= LongMediaThreshold {
		return Window{Start: 0, End: 0.2}
	}
	return FullWindow()
}

// Width returns End - Start.
func (w Window) Width() float64 {
	return w.End - w.Start
}

// TimeToFraction maps t to its position on the zoomed timeline, clamped to
// [0, 1]. ok is false when the window has zero width or duration is not
// positive.
func (w Window) TimeToFraction(t, duration float64) (f float64, ok bool) {
	if w.Width() <= 0 || duration <= 0 {
		return math.NaN(), false
	}
	f = (t/duration - w.Start) / w.Width()
	return clamp(f, 0, 1), true
}

// FractionToTime maps a zoomed-timeline position back to absolute time.
func (w Window) FractionToTime(f, duration float64) (t float64, ok bool) {
	if w.Width() <= 0 || duration <= 0 {
		return math.NaN(), false
	}
	f = clamp(f, 0, 1)
	return (w.Start + f*w.Width()) * duration, true
}

// Boundary selects a zoom window handle.
type Boundary int

const (
	ZoomStart Boundary = iota
	ZoomEnd
)

func (b Boundary) String() string {
	if b == ZoomStart {
		return "zoom-start"
	}
	return "zoom-end"
}

// Drag moves one boundary to f (clamped to [0, 1]). It rejects moves that
// would invert the window or shrink it below MinWidth; w is unchanged then.
func (w *Window) Drag(b Boundary, f float64) error {
	f = clamp(f, 0, 1)
	next := *w
	switch b {
	case ZoomStart:
		next.Start = f
	case ZoomEnd:
		next.End = f
	}
	if next.Start >= next.End {
		return ErrWindowInverted
	}
	if next.Width() < MinWidth-1e-12 {
		return ErrWindowTooNarrow
	}
	*w = next
	return nil
}

// Scale identifies which timeline a pointer position was taken from.
type Scale int

const (
	Full Scale = iota
	Zoomed
)

func (s Scale) String() string {
	if s == Zoomed {
		return "zoomed"
	}
	return "full"
}

// PointerTime converts a pointer fraction on the given timeline to time.
func (w Window) PointerTime(s Scale, f, duration float64) (float64, bool) {
	if duration <= 0 {
		return math.NaN(), false
	}
	if s == Zoomed {
		return w.FractionToTime(f, duration)
	}
	return clamp(f, 0, 1) * duration, true
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
