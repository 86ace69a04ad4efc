package engine

import (
	"math"

	"github.com/fakeyudi/cliptag/internal/annotation"
	"github.com/fakeyudi/cliptag/internal/interval"
	"github.com/fakeyudi/cliptag/internal/timeline"
)

// Begin starts a draft at the current position. A nil seed uses the
// last-used labels; pass annotation.Blank() to start unlabeled.
func (e *Engine) Begin(seed *annotation.Labels) error {
	if e.draft != nil {
		return ErrDrafting
	}
	pos := e.Position()
	if hit := e.startBlockedBy(pos); hit != nil {
		e.log.Debug("begin rejected", "at", pos, "inside", hit.ID)
		return &OverlapError{
			Start: pos, End: pos,
			ConflictID: hit.ID, ConflictStart: hit.Start, ConflictEnd: hit.End,
		}
	}

	labels := e.defaults
	if seed != nil {
		labels = *seed
	}
	d := annotation.New(pos, pos, e.author)
	if err := d.SetLabels(labels, e.author); err != nil {
		return err
	}
	e.draft = d
	e.log.Debug("draft started", "id", d.ID, "at", pos)
	e.changed()
	return nil
}

// startBlockedBy returns the committed interval a draft may not start in.
// Starting exactly on an interval's end is allowed so adjacent intervals can
// be drawn back to back.
func (e *Engine) startBlockedBy(pos float64) *annotation.Annotation {
	for _, a := range e.set.All() {
		if a.Start-e.tol.Overlap <= pos && pos < a.End-e.tol.Overlap {
			return a
		}
	}
	return nil
}

// Finish commits the draft as [draft start, current position]. A position
// not after the start keeps the draft; an overlap discards it.
func (e *Engine) Finish() (*annotation.Annotation, error) {
	if e.draft == nil {
		return nil, ErrNotDrafting
	}
	pos := e.Position()
	start := e.draft.Start
	if !(pos > start) {
		return nil, &InvalidRangeError{Start: start, End: pos}
	}
	r := interval.Range{Start: start, End: pos}
	if hit := e.set.OverlapsAny(r, e.draft.ID, e.tol.Overlap); hit != nil {
		e.log.Debug("finish rejected, draft discarded", "start", start, "end", pos, "overlaps", hit.ID)
		e.draft = nil
		return nil, &OverlapError{
			Start: start, End: pos,
			ConflictID: hit.ID, ConflictStart: hit.Start, ConflictEnd: hit.End,
		}
	}

	a := e.draft
	a.End = pos
	e.set.Insert(a)
	e.draft = nil
	if l, err := a.Labels(); err == nil {
		e.defaults = l.WithoutNotes()
	}
	e.log.Debug("interval finished", "id", a.ID, "start", a.Start, "end", a.End)
	e.changed()
	return a.Clone(), nil
}

// Toggle begins a draft when idle and finishes it when drafting.
func (e *Engine) Toggle() error {
	if e.draft == nil {
		var seed *annotation.Labels
		if e.seed == StartBlank {
			b := annotation.Blank()
			seed = &b
		}
		return e.Begin(seed)
	}
	_, err := e.Finish()
	return err
}

// Cancel discards the draft and resets the last-used labels. It reports
// false, and does nothing, when idle.
func (e *Engine) Cancel() bool {
	if e.draft == nil {
		return false
	}
	e.log.Debug("draft cancelled", "id", e.draft.ID)
	e.draft = nil
	e.defaults = annotation.Blank()
	e.changed()
	return true
}

// TargetKind says what an edit applies to.
type TargetKind int

const (
	TargetNone TargetKind = iota
	TargetCommitted
	TargetDraft
)

// Target is the interval a label edit resolves to. Annotation is a copy and
// is nil for TargetNone.
type Target struct {
	Kind       TargetKind
	Annotation *annotation.Annotation
}

// EditTarget resolves what a label edit at the current position applies to:
// the committed interval containing it, else the draft, else nothing.
func (e *Engine) EditTarget() Target {
	a, kind := e.editTarget()
	if a == nil {
		return Target{Kind: TargetNone}
	}
	return Target{Kind: kind, Annotation: a.Clone()}
}

func (e *Engine) editTarget() (*annotation.Annotation, TargetKind) {
	if i := e.set.Containing(e.Position(), e.tol.Contain); i >= 0 {
		return e.set.At(i), TargetCommitted
	}
	if e.draft != nil {
		return e.draft, TargetDraft
	}
	return nil, TargetNone
}

// ApplyLabels writes l to the edit target. With no target, l becomes the
// default for future drafts and no change is notified.
func (e *Engine) ApplyLabels(l annotation.Labels) (Target, error) {
	a, kind := e.editTarget()
	if a == nil {
		e.defaults = l.Normalize()
		e.log.Debug("default labels updated")
		return Target{Kind: TargetNone}, nil
	}
	if err := a.SetLabels(l, e.author); err != nil {
		return Target{}, err
	}
	e.log.Debug("labels applied", "id", a.ID, "draft", kind == TargetDraft)
	e.changed()
	return Target{Kind: kind, Annotation: a.Clone()}, nil
}

// Delete removes the committed interval containing the position. If none
// contains it, the latest interval ending strictly before the position is
// removed instead.
func (e *Engine) Delete() (*annotation.Annotation, error) {
	pos := e.Position()
	var victim *annotation.Annotation
	if i := e.set.Containing(pos, e.tol.Contain); i >= 0 {
		victim = e.set.At(i)
	} else {
		all := e.set.All()
		for i := len(all) - 1; i >= 0; i-- {
			if all[i].End < pos {
				victim = all[i]
				break
			}
		}
	}
	if victim == nil {
		return nil, ErrNoInterval
	}
	e.set.Remove(victim.ID)
	e.log.Debug("interval deleted", "id", victim.ID, "start", victim.Start, "end", victim.End)
	e.changed()
	return victim.Clone(), nil
}

// Previous returns the largest interval boundary before the position, or 0
// when there is none.
func (e *Engine) Previous() float64 {
	limit := e.Position() - e.tol.Navigate
	bs := e.set.Boundaries()
	for i := len(bs) - 1; i >= 0; i-- {
		if bs[i] < limit {
			return bs[i]
		}
	}
	return 0
}

// Next returns the smallest interval boundary after the position. ok is
// false when nothing lies ahead.
func (e *Engine) Next() (t float64, ok bool) {
	limit := e.Position() + e.tol.Navigate
	for _, b := range e.set.Boundaries() {
		if b > limit {
			return b, true
		}
	}
	return 0, false
}

// MergePrevious merges the interval at the position with the one before it.
func (e *Engine) MergePrevious() (*annotation.Annotation, error) {
	return e.merge(Previous)
}

// MergeNext merges the interval at the position with the one after it.
func (e *Engine) MergeNext() (*annotation.Annotation, error) {
	return e.merge(Next)
}

func (e *Engine) merge(dir Direction) (*annotation.Annotation, error) {
	i := e.set.Containing(e.Position(), e.tol.Contain)
	if i < 0 {
		return nil, ErrNoInterval
	}
	j := i + int(dir)
	if j < 0 || j >= e.set.Len() {
		return nil, &NotAdjacentError{Direction: dir, Gap: math.Inf(1), Tolerance: e.tol.Adjacency}
	}
	cur, nb := e.set.At(i), e.set.At(j)
	first, second := cur, nb
	if dir == Previous {
		first, second = nb, cur
	}
	if !interval.IsAdjacent(interval.RangeOf(first), interval.RangeOf(second), e.tol.Adjacency) {
		return nil, &NotAdjacentError{
			Direction: dir,
			Gap:       interval.Gap(interval.RangeOf(first), interval.RangeOf(second)),
			Tolerance: e.tol.Adjacency,
		}
	}

	src := cur
	if l, err := cur.Labels(); err != nil || l.IsUnlabeled() {
		src = nb
	}
	merged := annotation.New(math.Min(first.Start, second.Start), math.Max(first.End, second.End), e.author)
	merged.CloneLabelsFrom(src)
	merged.Shape = src.Clone().Shape

	e.set.Remove(cur.ID)
	e.set.Remove(nb.ID)
	e.set.Insert(merged)
	e.log.Debug("intervals merged", "into", merged.ID, "start", merged.Start, "end", merged.End, "direction", dir.String())
	e.changed()
	return merged.Clone(), nil
}

// Split cuts the interval at the position in two. The second part gets a
// new identity and a copy of the original's labels.
func (e *Engine) Split() (*annotation.Annotation, error) {
	pos := e.Position()
	i := e.set.Containing(pos, e.tol.Contain)
	if i < 0 {
		return nil, ErrNoInterval
	}
	a := e.set.At(i)
	if !(a.Start < pos && pos < a.End) || pos-a.Start < e.tol.MinSplit || a.End-pos < e.tol.MinSplit {
		return nil, &SplitTooCloseError{At: pos, Start: a.Start, End: a.End, Min: e.tol.MinSplit}
	}

	second := annotation.New(pos, a.End, e.author)
	second.CloneLabelsFrom(a)
	second.Shape = a.Clone().Shape
	a.End = pos
	e.set.Insert(second)
	e.log.Debug("interval split", "id", a.ID, "at", pos, "new", second.ID)
	e.changed()
	return second.Clone(), nil
}

// MoveEdge drags one edge of the committed interval id towards t, clamped by
// timeline.ResolveEdge against its neighbours, the minimum duration and the
// media duration. It returns the edge's new time; an unchanged edge is not
// notified.
func (e *Engine) MoveEdge(id string, edge timeline.Edge, t, duration float64) (float64, error) {
	i := e.set.Index(id)
	if i < 0 {
		return 0, ErrUnknownInterval
	}
	a := e.set.At(i)
	lim := timeline.EdgeLimits{
		Start:       a.Start,
		End:         a.End,
		Duration:    duration,
		MinDuration: e.tol.MinDrag,
		Gap:         e.tol.DragGap,
	}
	if i > 0 {
		lim.HasPrev, lim.PrevEnd = true, e.set.At(i-1).End
	}
	if i < e.set.Len()-1 {
		lim.HasNext, lim.NextStart = true, e.set.At(i+1).Start
	}

	got := timeline.ResolveEdge(edge, t, lim)
	switch edge {
	case timeline.EdgeStart:
		if got == a.Start {
			return got, nil
		}
		a.Start = got
		e.set.Fix(a.ID)
	case timeline.EdgeEnd:
		if got == a.End {
			return got, nil
		}
		a.End = got
	}
	e.changed()
	return got, nil
}

// Load replaces the committed set with list after checking every range and
// the non-overlap invariant. Any draft is discarded.
func (e *Engine) Load(list []*annotation.Annotation) error {
	clones := make([]*annotation.Annotation, len(list))
	for i, a := range list {
		if !interval.RangeOf(a).Valid() {
			return &InvalidRangeError{Start: a.Start, End: a.End}
		}
		clones[i] = a.Clone()
	}
	set := interval.NewSet(clones)
	all := set.All()
	for i := 1; i < len(all); i++ {
		prev, cur := all[i-1], all[i]
		if interval.Overlaps(interval.RangeOf(prev), interval.RangeOf(cur), e.tol.Overlap) {
			return &OverlapError{
				Start: cur.Start, End: cur.End,
				ConflictID: prev.ID, ConflictStart: prev.Start, ConflictEnd: prev.End,
			}
		}
	}
	e.set = set
	e.draft = nil
	e.log.Debug("intervals loaded", "count", set.Len())
	e.changed()
	return nil
}
