// Package engine implements the annotation state machine: drafting,
// finishing, editing, deleting, navigating, merging, splitting and dragging
// labeled intervals while keeping the committed set non-overlapping.
//
// The engine is synchronous and single-threaded. It reads the playhead from
// a PositionSource and reports every successful mutation through a single
// notify callback; it never drives playback or rendering itself.
package engine

import (
	"log/slog"

	"github.com/fakeyudi/cliptag/internal/annotation"
	"github.com/fakeyudi/cliptag/internal/interval"
)

// PositionSource reports the current playback position in seconds.
type PositionSource interface {
	Position() float64
}

// PositionFunc adapts a function to PositionSource.
type PositionFunc func() float64

func (f PositionFunc) Position() float64 { return f() }

// FixedPosition is a PositionSource that always reports the same time.
type FixedPosition float64

func (p FixedPosition) Position() float64 { return float64(p) }

// State is the drafting state of the engine.
type State int

const (
	Idle State = iota
	Drafting
)

func (s State) String() string {
	if s == Drafting {
		return "drafting"
	}
	return "idle"
}

// SeedMode decides which labels Toggle seeds a new draft with.
type SeedMode int

const (
	// ReuseLast seeds drafts with the labels of the last finished interval.
	ReuseLast SeedMode = iota
	// StartBlank seeds drafts with every category unlabeled.
	StartBlank
)

// Tolerances groups the numeric thresholds, in seconds, one per operation family.
type Tolerances struct {
	Overlap   float64 // candidate vs committed intervals
	Contain   float64 // "position is inside an interval"
	Adjacency float64 // merge eligibility
	Navigate  float64 // boundary stepping
	MinSplit  float64 // shortest part a split may leave
	MinDrag   float64 // shortest interval an edge drag may leave
	DragGap   float64 // distance an edge drag keeps from a neighbour
}

// DefaultTolerances returns the thresholds used when nothing is configured.
func DefaultTolerances() Tolerances {
	return Tolerances{
		Overlap:   0.001,
		Contain:   0.001,
		Adjacency: 0.01,
		Navigate:  0.01,
		MinSplit:  0.1,
		MinDrag:   0.05,
		DragGap:   0,
	}
}

// Engine owns the committed interval set, the optional draft and the
// last-used labels for one media timeline.
type Engine struct {
	pos      PositionSource
	notify   func()
	tol      Tolerances
	author   annotation.Author
	seed     SeedMode
	log      *slog.Logger
	set      *interval.Set
	draft    *annotation.Annotation
	defaults annotation.Labels
}

// Option configures an Engine.
type Option func(*Engine)

// WithNotify sets the callback invoked once after every successful mutation.
func WithNotify(fn func()) Option {
	return func(e *Engine) { e.notify = fn }
}

// WithTolerances overrides DefaultTolerances.
func WithTolerances(t Tolerances) Option {
	return func(e *Engine) { e.tol = t }
}

// WithAuthor attributes label revisions written by the engine.
func WithAuthor(a annotation.Author) Option {
	return func(e *Engine) { e.author = a }
}

// WithSeedMode selects how Toggle seeds new drafts.
func WithSeedMode(m SeedMode) Option {
	return func(e *Engine) { e.seed = m }
}

// WithLogger sets the logger for operation tracing.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// New returns an idle engine with an empty committed set.
func New(pos PositionSource, opts ...Option) *Engine {
	e := &Engine{
		pos:      pos,
		notify:   func() {},
		tol:      DefaultTolerances(),
		author:   annotation.Anonymous,
		log:      slog.New(slog.DiscardHandler),
		set:      interval.NewSet(nil),
		defaults: annotation.Blank(),
	}
	for _, o := range opts {
		o(e)
	}
	if e.notify == nil {
		e.notify = func() {}
	}
	return e
}

// State reports whether an interval is being drafted.
func (e *Engine) State() State {
	if e.draft != nil {
		return Drafting
	}
	return Idle
}

// Tolerances returns the thresholds in effect.
func (e *Engine) Tolerances() Tolerances { return e.tol }

// Position returns the current playback position.
func (e *Engine) Position() float64 { return e.pos.Position() }

// Defaults returns a copy of the labels new drafts are seeded with.
func (e *Engine) Defaults() annotation.Labels { return e.defaults.Clone() }

// SetDefaults replaces the labels new drafts are seeded with.
func (e *Engine) SetDefaults(l annotation.Labels) { e.defaults = l.Normalize() }

// Len returns the number of committed intervals.
func (e *Engine) Len() int { return e.set.Len() }

// Intervals returns deep copies of the committed intervals in start order.
func (e *Engine) Intervals() []*annotation.Annotation {
	out := make([]*annotation.Annotation, e.set.Len())
	for i, a := range e.set.All() {
		out[i] = a.Clone()
	}
	return out
}

// Draft returns a copy of the in-progress interval, or nil. Its End equals
// its Start until it is finished.
func (e *Engine) Draft() *annotation.Annotation {
	if e.draft == nil {
		return nil
	}
	return e.draft.Clone()
}

// Get returns a copy of the committed interval with id, or nil.
func (e *Engine) Get(id string) *annotation.Annotation {
	if a := e.set.Get(id); a != nil {
		return a.Clone()
	}
	return nil
}

// Current returns a copy of the committed interval containing the position, or nil.
func (e *Engine) Current() *annotation.Annotation {
	if i := e.set.Containing(e.Position(), e.tol.Contain); i >= 0 {
		return e.set.At(i).Clone()
	}
	return nil
}

// Valid reports whether the committed set satisfies the non-overlap invariant.
func (e *Engine) Valid() bool {
	return e.set.Valid(e.tol.Overlap)
}

func (e *Engine) changed() {
	e.notify()
}
