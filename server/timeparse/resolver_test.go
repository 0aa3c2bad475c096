package timeparse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	scherrors "github.com/hrygo/schedwise/server/internal/errors"
	"github.com/hrygo/schedwise/server/timezone"
)

func TestResolve_ZoneQualified(t *testing.T) {
	// Zone-qualified input must not be reinterpreted in the local zone, so the
	// resolver zone is deliberately something else.
	r := NewResolver(timezone.LocationNewYork)

	tests := []struct {
		name    string
		input   string
		wantUTC string
	}{
		{"RFC3339 zulu", "2025-07-01T15:30:00Z", "2025-07-01T15:30:00Z"},
		{"RFC3339 offset", "2025-07-01T15:30:00+09:00", "2025-07-01T06:30:00Z"},
		{"fractional zulu", "2025-07-01T15:30:00.250Z", "2025-07-01T15:30:00Z"},
		{"compact offset", "2025-07-01T15:30:00+0900", "2025-07-01T06:30:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantUTC, got.Truncate(time.Second).Format(time.RFC3339))
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestResolve_ZoneNaive(t *testing.T) {
	r := NewResolver(timezone.LocationAsiaTokyo)

	tests := []struct {
		name    string
		input   string
		wantUTC string
	}{
		{"space datetime", "2025-07-01 15:30", "2025-07-01T06:30:00Z"},
		{"space datetime seconds", "2025-07-01 15:30:45", "2025-07-01T06:30:45Z"},
		{"T datetime", "2025-07-01T15:30", "2025-07-01T06:30:00Z"},
		{"slash datetime", "07/01/2025 15:30", "2025-07-01T06:30:00Z"},
		{"long form", "2025年07月01日 15:30", "2025-07-01T06:30:00Z"},
		{"long form date only", "2025年07月01日", "2025-06-30T15:00:00Z"},
		{"date only", "2025-07-01", "2025-06-30T15:00:00Z"},
		{"slash date only", "07/01/2025", "2025-06-30T15:00:00Z"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Resolve(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantUTC, got.Format(time.RFC3339))
		})
	}
}

// Every zone-naive layout round-trips: formatting an instant with the layout
// and resolving it again yields the same instant at second precision.
func TestResolve_RoundTrip(t *testing.T) {
	loc := timezone.LocationAsiaTokyo
	r := NewResolver(loc)
	instant := time.Date(2025, 12, 3, 9, 41, 27, 0, loc)

	layouts := []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"01/02/2006 15:04:05",
		"2006年01月02日 15:04:05",
	}

	for _, layout := range layouts {
		t.Run(layout, func(t *testing.T) {
			got, err := r.Resolve(instant.Format(layout))
			require.NoError(t, err)
			assert.True(t, got.Equal(instant), "want %v, got %v", instant, got)
		})
	}
}

func TestResolve_DSTGap(t *testing.T) {
	// 2025-03-09 02:30 does not exist in New York (spring forward skips
	// 02:00-03:00).
	r := NewResolver(timezone.LocationNewYork)

	_, err := r.Resolve("2025-03-09 02:30")
	require.Error(t, err)
	assert.True(t, scherrors.IsCode(err, scherrors.ErrCodeAmbiguousLocalTime))

	// The same wall clock is fine an hour later.
	got, err := r.Resolve("2025-03-09 03:30")
	require.NoError(t, err)
	assert.Equal(t, "2025-03-09T07:30:00Z", got.Format(time.RFC3339))
}

func TestResolve_Unrecognized(t *testing.T) {
	r := NewResolver(timezone.LocationAsiaTokyo)

	for _, input := range []string{"", "   ", "next tuesday-ish", "2025/13/45"} {
		_, err := r.Resolve(input)
		require.Error(t, err, "input %q", input)
		assert.True(t, scherrors.IsCode(err, scherrors.ErrCodeDateUnrecognized), "input %q", input)
	}
}

func TestResolve_NilZoneDefaultsToUTC(t *testing.T) {
	r := NewResolver(nil)
	got, err := r.Resolve("2025-07-01 15:30")
	require.NoError(t, err)
	assert.Equal(t, "2025-07-01T15:30:00Z", got.Format(time.RFC3339))
}
