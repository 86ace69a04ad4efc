package timeline

import "fmt"

// Drag is the pointer-drag state. Exactly one of NoDrag, ZoomStartDrag,
// ZoomEndDrag or EdgeDrag.
type Drag interface {
	isDrag()
}

// NoDrag means nothing is being dragged.
type NoDrag struct{}

// ZoomStartDrag drags the zoom window's start handle on the full timeline.
type ZoomStartDrag struct{}

// ZoomEndDrag drags the zoom window's end handle on the full timeline.
type ZoomEndDrag struct{}

// EdgeDrag drags one edge of a committed interval on either timeline.
type EdgeDrag struct {
	Edge       Edge
	IntervalID string
	Scale      Scale
}

func (NoDrag) isDrag()        {}
func (ZoomStartDrag) isDrag() {}
func (ZoomEndDrag) isDrag()   {}
func (EdgeDrag) isDrag()      {}

// EdgeMover applies a clamped edge move to a committed interval.
type EdgeMover interface {
	MoveEdge(id string, edge Edge, t, duration float64) (float64, error)
}

// Dragger tracks the active drag and routes pointer motion to the zoom
// window or to an EdgeMover.
type Dragger struct {
	Window *Window
	State  Drag
}

// NewDragger returns an idle dragger bound to w.
func NewDragger(w *Window) *Dragger {
	return &Dragger{Window: w, State: NoDrag{}}
}

// Begin replaces the drag state.
func (d *Dragger) Begin(s Drag) {
	if s == nil {
		s = NoDrag{}
	}
	d.State = s
}

// End returns to NoDrag.
func (d *Dragger) End() {
	d.State = NoDrag{}
}

// Active reports whether a drag is in progress.
func (d *Dragger) Active() bool {
	_, idle := d.State.(NoDrag)
	return !idle
}

// Move handles pointer motion to fraction f of the timeline the drag started
// on. A rejected zoom move keeps the previous window and returns the error.
func (d *Dragger) Move(f, duration float64, mover EdgeMover) error {
	switch s := d.State.(type) {
	case NoDrag:
		return nil
	case ZoomStartDrag:
		return d.Window.Drag(ZoomStart, f)
	case ZoomEndDrag:
		return d.Window.Drag(ZoomEnd, f)
	case EdgeDrag:
		t, ok := d.Window.PointerTime(s.Scale, f, duration)
		if !ok {
			return nil
		}
		_, err := mover.MoveEdge(s.IntervalID, s.Edge, t, duration)
		return err
	default:
		panic(fmt.Sprintf("timeline: unhandled drag state %T", s))
	}
}
