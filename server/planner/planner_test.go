package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scherrors "github.com/hrygo/schedwise/server/internal/errors"
)

// at builds an instant on a fixed test day.
func at(hour, minute int) time.Time {
	return time.Date(2025, 7, 1, hour, minute, 0, 0, time.UTC)
}

func mustRange(t *testing.T, start, end time.Time) Range {
	t.Helper()
	r, err := NewRange(start, end)
	require.NoError(t, err)
	return r
}

func TestNewRange(t *testing.T) {
	_, err := NewRange(at(10, 0), at(9, 0))
	require.Error(t, err)
	assert.True(t, scherrors.IsCode(err, scherrors.ErrCodeEndBeforeStart))

	_, err = NewRange(at(10, 0), at(10, 0))
	assert.Error(t, err, "zero-length range is invalid")

	r, err := NewRange(at(9, 0), at(10, 0))
	require.NoError(t, err)
	assert.Equal(t, time.Hour, r.Duration())
}

func TestHasConflict(t *testing.T) {
	existing := []Range{
		{Start: at(9, 0), End: at(10, 0)},
		{Start: at(11, 0), End: at(12, 0)},
	}

	tests := []struct {
		name      string
		candidate Range
		want      bool
	}{
		{"inside existing", Range{Start: at(9, 15), End: at(9, 45)}, true},
		{"covering existing", Range{Start: at(8, 30), End: at(10, 30)}, true},
		{"partial overlap front", Range{Start: at(8, 30), End: at(9, 30)}, true},
		{"partial overlap back", Range{Start: at(11, 30), End: at(12, 30)}, true},
		{"touching end does not conflict", Range{Start: at(10, 0), End: at(11, 0)}, false},
		{"touching start does not conflict", Range{Start: at(8, 0), End: at(9, 0)}, false},
		{"clear gap", Range{Start: at(10, 15), End: at(10, 45)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasConflict(existing, tt.candidate))
		})
	}
}

// Overlap is symmetric: checking a candidate against one existing range must
// equal checking that range against the candidate.
func TestHasConflict_Symmetry(t *testing.T) {
	ranges := []Range{
		{Start: at(8, 0), End: at(9, 30)},
		{Start: at(9, 0), End: at(10, 0)},
		{Start: at(10, 0), End: at(11, 0)},
		{Start: at(13, 0), End: at(14, 0)},
	}

	for i, a := range ranges {
		for j, b := range ranges {
			assert.Equal(t,
				HasConflict([]Range{a}, b),
				HasConflict([]Range{b}, a),
				"asymmetric overlap between %d and %d", i, j)
		}
	}
}

func TestFindFreeSlots_Scenario(t *testing.T) {
	// busy 9-10 and 11-12 in a window 8-13 with 45 minute minimum.
	busy := []Range{
		{Start: at(9, 0), End: at(10, 0)},
		{Start: at(11, 0), End: at(12, 0)},
	}
	window := mustRange(t, at(8, 0), at(13, 0))

	slots, err := FindFreeSlots(busy, window, 45*time.Minute)
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.Equal(t, Range{Start: at(8, 0), End: at(9, 0)}, slots[0])
	assert.Equal(t, Range{Start: at(10, 0), End: at(11, 0)}, slots[1])
	assert.Equal(t, Range{Start: at(12, 0), End: at(13, 0)}, slots[2])
}

func TestFindFreeSlots_EmptyBusy(t *testing.T) {
	window := mustRange(t, at(9, 0), at(10, 0))

	slots, err := FindFreeSlots(nil, window, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, []Range{window}, slots)

	// Window shorter than the minimum yields nothing.
	slots, err = FindFreeSlots(nil, window, 2*time.Hour)
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestFindFreeSlots_UnsortedAndOverlappingBusy(t *testing.T) {
	busy := []Range{
		{Start: at(11, 0), End: at(12, 0)},
		{Start: at(9, 0), End: at(10, 30)},
		{Start: at(10, 0), End: at(11, 30)}, // overlaps both neighbors
	}
	window := mustRange(t, at(8, 0), at(13, 0))

	slots, err := FindFreeSlots(busy, window, 30*time.Minute)
	require.NoError(t, err)
	assert.Equal(t, []Range{
		{Start: at(8, 0), End: at(9, 0)},
		{Start: at(12, 0), End: at(13, 0)},
	}, slots)

	// Input slice order must be untouched.
	assert.Equal(t, at(11, 0), busy[0].Start)
}

func TestFindFreeSlots_BusyOutsideWindow(t *testing.T) {
	busy := []Range{
		{Start: at(6, 0), End: at(7, 0)},
		{Start: at(14, 0), End: at(15, 0)},
	}
	window := mustRange(t, at(8, 0), at(13, 0))

	slots, err := FindFreeSlots(busy, window, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []Range{window}, slots)
}

func TestFindFreeSlots_BusyStraddlingWindowEdges(t *testing.T) {
	busy := []Range{
		{Start: at(7, 0), End: at(9, 0)},   // straddles window start
		{Start: at(12, 0), End: at(14, 0)}, // straddles window end
	}
	window := mustRange(t, at(8, 0), at(13, 0))

	slots, err := FindFreeSlots(busy, window, time.Hour)
	require.NoError(t, err)
	assert.Equal(t, []Range{{Start: at(9, 0), End: at(12, 0)}}, slots)
}

func TestFindFreeSlots_InvalidMinDuration(t *testing.T) {
	window := mustRange(t, at(8, 0), at(13, 0))

	for _, d := range []time.Duration{0, -time.Minute} {
		_, err := FindFreeSlots(nil, window, d)
		require.Error(t, err)
		assert.True(t, scherrors.IsCode(err, scherrors.ErrCodeInvalidArgument))
	}
}

// With a zero-ish minimum duration, free slots plus busy time clipped to the
// window must cover the window exactly: every point in the window is either
// inside a busy range or inside exactly one emitted slot.
func TestFindFreeSlots_CoverageInvariant(t *testing.T) {
	busyLists := [][]Range{
		nil,
		{{Start: at(9, 0), End: at(10, 0)}},
		{{Start: at(9, 0), End: at(10, 0)}, {Start: at(11, 0), End: at(12, 0)}},
		{{Start: at(7, 0), End: at(9, 30)}, {Start: at(9, 0), End: at(11, 0)}},
		{{Start: at(8, 0), End: at(13, 0)}},
	}
	window := mustRange(t, at(8, 0), at(13, 0))

	for i, busy := range busyLists {
		slots, err := FindFreeSlots(busy, window, time.Nanosecond)
		require.NoError(t, err)

		// Probe the window minute by minute.
		for probe := window.Start; probe.Before(window.End); probe = probe.Add(time.Minute) {
			inBusy := false
			for _, b := range busy {
				if b.Contains(probe) {
					inBusy = true
					break
				}
			}
			inSlots := 0
			for _, s := range slots {
				if s.Contains(probe) {
					inSlots++
				}
			}
			if inBusy {
				assert.Equal(t, 0, inSlots, "case %d: busy instant %v inside a free slot", i, probe)
			} else {
				assert.Equal(t, 1, inSlots, "case %d: free instant %v covered %d times", i, probe, inSlots)
			}
		}
	}
}
