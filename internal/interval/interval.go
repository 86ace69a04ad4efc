// Package interval implements the overlap, adjacency and containment
// predicates that keep a set of annotations well formed, and the ordered set
// the engine stores committed annotations in.
package interval

import "math"

// Range is a [Start, End] span in seconds.
type Range struct {
	Start float64
	End   float64
}

// Valid reports whether r has positive length.
func (r Range) Valid() bool {
	return r.Start < r.End && !math.IsNaN(r.Start) && !math.IsNaN(r.End)
}

// Overlaps reports whether a and b intersect by more than tol on either side.
// Touching ranges do not overlap.
func Overlaps(a, b Range, tol float64) bool {
	return a.Start < b.End-tol && a.End > b.Start+tol
}

// IsAdjacent reports whether b starts within tol of a's end. Only the a→b
// direction is checked.
func IsAdjacent(a, b Range, tol float64) bool {
	return math.Abs(b.Start-a.End) <= tol
}

// Gap returns the signed distance from a's end to b's start.
func Gap(a, b Range) float64 {
	return b.Start - a.End
}

// Contains reports whether t lies in [r.Start-tol, r.End+tol].
func Contains(r Range, t, tol float64) bool {
	return r.Start-tol <= t && t <= r.End+tol
}

// ContainingIndex returns the index of the range containing t, or -1.
// sorted must be ordered by Start. If ranges overlap, the first match wins.
func ContainingIndex(sorted []Range, t, tol float64) int {
	for i, r := range sorted {
		if Contains(r, t, tol) {
			return i
		}
	}
	return -1
}
