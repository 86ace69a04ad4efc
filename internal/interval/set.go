package interval

import (
	"slices"
	"sort"

	"github.com/fakeyudi/cliptag/internal/annotation"
)

// Set is an ordered collection of committed annotations, sorted by start
// time. Ordering is maintained on insert; callers that move a start edge in
// place must call Fix afterwards.
type Set struct {
	items []*annotation.Annotation
}

// NewSet builds a set from list, sorting it once.
func NewSet(list []*annotation.Annotation) *Set {
	s := &Set{items: slices.Clone(list)}
	sort.SliceStable(s.items, func(i, j int) bool { return s.items[i].Start < s.items[j].Start })
	return s
}

// Len returns the number of annotations.
func (s *Set) Len() int { return len(s.items) }

// At returns the i-th annotation in start order.
func (s *Set) At(i int) *annotation.Annotation { return s.items[i] }

// All returns the backing slice in start order. Callers must not modify it.
func (s *Set) All() []*annotation.Annotation { return s.items }

// Insert places a at its sorted position and returns that index. Equal
// starts keep insertion order.
func (s *Set) Insert(a *annotation.Annotation) int {
	i := sort.Search(len(s.items), func(i int) bool { return s.items[i].Start > a.Start })
	s.items = slices.Insert(s.items, i, a)
	return i
}

// Index returns the position of the annotation with id, or -1.
func (s *Set) Index(id string) int {
	return slices.IndexFunc(s.items, func(a *annotation.Annotation) bool { return a.ID == id })
}

// Get returns the annotation with id, or nil.
func (s *Set) Get(id string) *annotation.Annotation {
	if i := s.Index(id); i >= 0 {
		return s.items[i]
	}
	return nil
}

// Remove deletes the annotation with id and reports whether it was present.
func (s *Set) Remove(id string) bool {
	i := s.Index(id)
	if i < 0 {
		return false
	}
	s.items = slices.Delete(s.items, i, i+1)
	return true
}

// Fix restores start order for the annotation with id after its start moved.
func (s *Set) Fix(id string) {
	i := s.Index(id)
	if i < 0 {
		return
	}
	a := s.items[i]
	s.items = slices.Delete(s.items, i, i+1)
	s.Insert(a)
}

// Ranges returns the spans in start order.
func (s *Set) Ranges() []Range {
	out := make([]Range, len(s.items))
	for i, a := range s.items {
		out[i] = RangeOf(a)
	}
	return out
}

// Containing returns the index of the annotation containing t, or -1.
func (s *Set) Containing(t, tol float64) int {
	return ContainingIndex(s.Ranges(), t, tol)
}

// OverlapsAny reports the first annotation other than excludeID that
// overlaps r, or nil.
func (s *Set) OverlapsAny(r Range, excludeID string, tol float64) *annotation.Annotation {
	for _, a := range s.items {
		if a.ID == excludeID {
			continue
		}
		if Overlaps(r, RangeOf(a), tol) {
			return a
		}
	}
	return nil
}

// Boundaries returns every start and end, sorted and deduplicated.
func (s *Set) Boundaries() []float64 {
	out := make([]float64, 0, 2*len(s.items))
	for _, a := range s.items {
		out = append(out, a.Start, a.End)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// Valid reports whether every span has positive length and no two overlap
// beyond tol.
func (s *Set) Valid(tol float64) bool {
	for i, a := range s.items {
		if !RangeOf(a).Valid() {
			return false
		}
		for _, b := range s.items[i+1:] {
			if Overlaps(RangeOf(a), RangeOf(b), tol) {
				return false
			}
		}
	}
	return true
}

// RangeOf returns a's span.
func RangeOf(a *annotation.Annotation) Range {
	return Range{Start: a.Start, End: a.End}
}
