// Package planner provides pure interval algebra over busy calendar time:
// conflict detection and free-slot search. All ranges are half-open
// [Start, End) over absolute UTC instants.
package planner

import (
	"sort"
	"time"

	scherrors "github.com/hrygo/schedwise/server/internal/errors"
)

// Range is a half-open time interval [Start, End).
type Range struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewRange builds a validated range. End at or before Start is a validation
// error, never a panic.
func NewRange(start, end time.Time) (Range, error) {
	if !end.After(start) {
		return Range{}, scherrors.EndBeforeStart("range end must be after its start")
	}
	return Range{Start: start, End: end}, nil
}

// Duration returns the length of the range.
func (r Range) Duration() time.Duration {
	return r.End.Sub(r.Start)
}

// Overlaps reports whether two half-open ranges intersect.
// Touching endpoints do not overlap.
func (r Range) Overlaps(other Range) bool {
	return r.Start.Before(other.End) && r.End.After(other.Start)
}

// Contains reports whether t falls within the range.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && t.Before(r.End)
}

// HasConflict reports whether candidate overlaps any existing range.
// Used before every event creation.
func HasConflict(existing []Range, candidate Range) bool {
	for _, e := range existing {
		if candidate.Overlaps(e) {
			return true
		}
	}
	return false
}

// FindFreeSlots returns the sub-ranges of window not covered by any busy
// range and at least minDuration long, ordered by start time.
//
// The busy list may be unsorted and may contain overlapping ranges; the
// cursor only ever advances, which makes the sweep robust to both. Busy
// ranges entirely outside the window contribute nothing.
func FindFreeSlots(busy []Range, window Range, minDuration time.Duration) ([]Range, error) {
	if minDuration <= 0 {
		return nil, scherrors.InvalidArgument("minimum duration must be positive")
	}

	// Sort a copy so the caller's slice order is preserved.
	sorted := make([]Range, len(busy))
	copy(sorted, busy)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Start.Before(sorted[j].Start)
	})

	var slots []Range
	cursor := window.Start

	for _, b := range sorted {
		if !b.Overlaps(window) {
			continue
		}
		if b.Start.Sub(cursor) >= minDuration {
			slots = append(slots, Range{Start: cursor, End: b.Start})
		}
		if b.End.After(cursor) {
			cursor = b.End
		}
	}

	if window.End.Sub(cursor) >= minDuration {
		slots = append(slots, Range{Start: cursor, End: window.End})
	}

	return slots, nil
}
