package timeline

import "math"

// Edge selects the start or end of an interval.
type Edge int

const (
	EdgeStart Edge = iota
	EdgeEnd
)

func (e Edge) String() string {
	if e == EdgeStart {
		return "start"
	}
	return "end"
}

// EdgeLimits describes everything an edge drag is clamped against.
type EdgeLimits struct {
	Start float64 // current interval bounds
	End   float64

	HasPrev   bool
	PrevEnd   float64
	HasNext   bool
	NextStart float64

	// Duration is the media length; zero leaves the end unbounded.
	Duration float64
	// MinDuration is the shortest interval a drag may produce.
	MinDuration float64
	// Gap is the minimum distance kept from a neighbour's opposite edge.
	Gap float64
}

// ResolveEdge returns the time edge should move to when the pointer is at t.
// The result never inverts the interval, never makes it shorter than
// MinDuration and never crosses a neighbour. If no position satisfies all
// constraints the edge stays where it is. The rule is the same for both
// timelines; only the pointer-to-time conversion differs.
func ResolveEdge(edge Edge, t float64, l EdgeLimits) float64 {
	if math.IsNaN(t) {
		return current(edge, l)
	}
	var lo, hi float64
	switch edge {
	case EdgeStart:
		lo = 0
		if l.HasPrev {
			lo = math.Max(lo, l.PrevEnd+l.Gap)
		}
		hi = l.End - l.MinDuration
	case EdgeEnd:
		lo = l.Start + l.MinDuration
		hi = math.Inf(1)
		if l.Duration > 0 {
			hi = l.Duration
		}
		if l.HasNext {
			hi = math.Min(hi, l.NextStart-l.Gap)
		}
	}
	if lo > hi {
		return current(edge, l)
	}
	return clamp(t, lo, hi)
}

func current(edge Edge, l EdgeLimits) float64 {
	if edge == EdgeStart {
		return l.Start
	}
	return l.End
}
