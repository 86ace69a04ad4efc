package tui

import (
	"math"
	"strings"

	"github.com/fakeyudi/cliptag/internal/annotation"
	"github.com/fakeyudi/cliptag/internal/timeline"
)

// barPrefix is the width of the "full  " / "zoom  " gutter before each bar.
const barPrefix = 6

// Screen rows of the timeline block.
const (
	rowFull    = 1
	rowHandles = 2
	rowZoom    = 3
)

// edgeGrab is how many cells either side of an edge still pick it up.
const edgeGrab = 1

// track is one rendered timeline: the full one or the zoomed one.
type track struct {
	scale    timeline.Scale
	window   timeline.Window
	duration float64
	width    int
}

// fraction maps a screen column to a position on the bar, using cell centres.
func (tr track) fraction(x int) float64 {
	if tr.width <= 0 {
		return 0
	}
	f := (float64(x-barPrefix) + 0.5) / float64(tr.width)
	return math.Max(0, math.Min(1, f))
}

// timeAt returns the media time under screen column x.
func (tr track) timeAt(x int) (float64, bool) {
	return tr.window.PointerTime(tr.scale, tr.fraction(x), tr.duration)
}

// column returns the bar cell showing t. ok is false when t is outside the
// visible range of a zoomed track.
func (tr track) column(t float64) (int, bool) {
	if tr.duration <= 0 || tr.width <= 0 {
		return 0, false
	}
	f := t / tr.duration
	if tr.scale == timeline.Zoomed {
		if f < tr.window.Start || f > tr.window.End {
			return 0, false
		}
		f, _ = tr.window.TimeToFraction(t, tr.duration)
	}
	col := int(f * float64(tr.width))
	return min(max(col, 0), tr.width-1), true
}

// render draws the bar. Cells take the posture colour of the interval at
// their centre time; the draft spans from its start to the playhead.
func (tr track) render(list []*annotation.Annotation, draft *annotation.Annotation, pos float64) string {
	var sb strings.Builder
	playCol, playVisible := tr.column(pos)
	for col := range tr.width {
		t, _ := tr.timeAt(barPrefix + col)
		style := trackStyle
		if tr.scale == timeline.Full {
			if f := t / tr.duration; f >= tr.window.Start && f <= tr.window.End {
				style = windowStyle
			}
		}
		if draft != nil && t >= math.Min(draft.Start, pos) && t <= math.Max(draft.Start, pos) {
			style = draftStyle
		}
		for _, a := range list {
			if t >= a.Start && t <= a.End {
				style = postureStyle(postureOf(a))
				break
			}
		}
		glyph := " "
		if playVisible && col == playCol {
			glyph = "│"
			style = style.Inherit(playheadStyle)
		} else if tr.edgeAt(list, col) {
			glyph = edgeCellMarker
		}
		sb.WriteString(style.Render(glyph))
	}
	return sb.String()
}

func (tr track) edgeAt(list []*annotation.Annotation, col int) bool {
	for _, a := range list {
		if c, ok := tr.column(a.Start); ok && c == col {
			return true
		}
		if c, ok := tr.column(a.End); ok && c == col {
			return true
		}
	}
	return false
}

// hitEdge returns the interval edge nearest to screen column x, if one lies
// within edgeGrab cells.
func (tr track) hitEdge(list []*annotation.Annotation, x int) (timeline.EdgeDrag, bool) {
	col := x - barPrefix
	best := edgeGrab + 1
	var hit timeline.EdgeDrag
	for _, a := range list {
		for _, e := range []struct {
			edge timeline.Edge
			t    float64
		}{{timeline.EdgeStart, a.Start}, {timeline.EdgeEnd, a.End}} {
			c, ok := tr.column(e.t)
			if !ok {
				continue
			}
			if d := abs(c - col); d < best {
				best = d
				hit = timeline.EdgeDrag{Edge: e.edge, IntervalID: a.ID, Scale: tr.scale}
			}
		}
	}
	return hit, best <= edgeGrab
}

// handles draws the zoom window markers under the full bar.
func handles(w timeline.Window, width int) string {
	cells := []rune(strings.Repeat(" ", width))
	start, end := handleColumns(w, width)
	cells[start] = '['
	cells[end] = ']'
	return handleStyle.Render(string(cells))
}

func handleColumns(w timeline.Window, width int) (start, end int) {
	start = min(int(w.Start*float64(width)), width-1)
	end = min(max(int(math.Ceil(w.End*float64(width)))-1, start), width-1)
	return start, end
}

// hitHandle picks the zoom handle under screen column x on the handle row.
func hitHandle(w timeline.Window, width, x int) (timeline.Drag, bool) {
	col := x - barPrefix
	start, end := handleColumns(w, width)
	ds, de := abs(col-start), abs(col-end)
	switch {
	case ds <= edgeGrab && ds <= de:
		return timeline.ZoomStartDrag{}, true
	case de <= edgeGrab:
		return timeline.ZoomEndDrag{}, true
	}
	return timeline.NoDrag{}, false
}

func postureOf(a *annotation.Annotation) string {
	l, err := a.Labels()
	if err != nil {
		return ""
	}
	return l.Posture
}
