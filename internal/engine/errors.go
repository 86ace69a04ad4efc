package engine

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrNoInterval is returned when an operation needs an interval at the
	// current position and there is none.
	ErrNoInterval = errors.New("no interval at the current position")
	// ErrNotDrafting is returned by Finish when no interval is in progress.
	ErrNotDrafting = errors.New("no interval in progress")
	// ErrDrafting is returned by Begin while another interval is in progress.
	ErrDrafting = errors.New("an interval is already in progress")
	// ErrUnknownInterval is returned for an id that is not in the committed set.
	ErrUnknownInterval = errors.New("unknown interval")
)

// OverlapError reports a candidate range that intersects a committed interval.
type OverlapError struct {
	Start, End float64
	// Conflict is the committed interval that was hit.
	ConflictID    string
	ConflictStart float64
	ConflictEnd   float64
}

func (e *OverlapError) Error() string {
	if e.Start == e.End {
		return fmt.Sprintf("position %.3fs lies inside interval %.3fs-%.3fs", e.Start, e.ConflictStart, e.ConflictEnd)
	}
	return fmt.Sprintf("range %.3fs-%.3fs overlaps interval %.3fs-%.3fs", e.Start, e.End, e.ConflictStart, e.ConflictEnd)
}

// InvalidRangeError reports an end that does not follow its start.
type InvalidRangeError struct {
	Start, End float64
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("end %.3fs must be after start %.3fs", e.End, e.Start)
}

// Direction is the side a merge looks for its neighbour on.
type Direction int

const (
	Previous Direction = -1
	Next     Direction = 1
)

func (d Direction) String() string {
	if d == Previous {
		return "previous"
	}
	return "next"
}

// NotAdjacentError reports a merge whose neighbour is missing or too far away.
// Gap is +Inf when there is no neighbour in that direction.
type NotAdjacentError struct {
	Direction Direction
	Gap       float64
	Tolerance float64
}

func (e *NotAdjacentError) Error() string {
	if math.IsInf(e.Gap, 1) {
		return fmt.Sprintf("cannot merge: no %s interval", e.Direction)
	}
	return fmt.Sprintf("cannot merge: %s interval is not adjacent (gap %.3fs, tolerance %.3fs)", e.Direction, e.Gap, e.Tolerance)
}

// SplitTooCloseError reports a split point that would leave a part shorter
// than Min, or that is not strictly inside the interval.
type SplitTooCloseError struct {
	At         float64
	Start, End float64
	Min        float64
}

func (e *SplitTooCloseError) Error() string {
	return fmt.Sprintf("cannot split %.3fs-%.3fs at %.3fs: both parts must be at least %.3fs", e.Start, e.End, e.At, e.Min)
}
