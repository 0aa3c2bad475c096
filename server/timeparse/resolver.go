// Package timeparse resolves free-form date/time strings into absolute UTC
// instants.
//
// Inputs carrying an explicit zone are converted to UTC directly and never
// reinterpreted. Zone-naive inputs are read as wall-clock time in the
// resolver's configured local zone, then converted to UTC. Formats are tried
// in a fixed order and the first match wins.
package timeparse

import (
	"strings"
	"time"

	scherrors "github.com/hrygo/schedwise/server/internal/errors"
)

// zoneQualifiedLayouts are tried after strict RFC3339. Each carries its own
// offset, so the local zone is never involved.
var zoneQualifiedLayouts = []string{
	"2006-01-02T15:04:05.999999999Z",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05.999999999Z07:00",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05.999999999-0700",
}

// zoneNaiveLayouts are interpreted as wall-clock time in the local zone.
// Date-only layouts resolve to midnight local time.
var zoneNaiveLayouts = []struct {
	layout   string
	dateOnly bool
}{
	{"2006-01-02 15:04:05", false},
	{"2006-01-02 15:04", false},
	{"2006-01-02T15:04:05", false},
	{"2006-01-02T15:04", false},
	{"01/02/2006 15:04:05", false},
	{"01/02/2006 15:04", false},
	{"2006年01月02日 15:04:05", false},
	{"2006年1月2日 15:04:05", false},
	{"2006年01月02日 15:04", false},
	{"2006年1月2日 15:04", false},
	{"2006年01月02日", true},
	{"2006年1月2日", true},
	{"2006-01-02", true},
	{"01/02/2006", true},
}

// Resolver resolves date/time strings against a configured local zone.
// It is pure: safe for concurrent use from any goroutine.
type Resolver struct {
	localZone *time.Location
}

// NewResolver creates a resolver interpreting zone-naive input in localZone.
// A nil localZone falls back to UTC.
func NewResolver(localZone *time.Location) *Resolver {
	if localZone == nil {
		localZone = time.UTC
	}
	return &Resolver{localZone: localZone}
}

// Zone returns the configured local zone.
func (r *Resolver) Zone() *time.Location {
	return r.localZone
}

// Resolve parses text into an absolute UTC instant.
//
// Returns a structured error with code DATE_AMBIGUOUS_LOCAL_TIME when a
// zone-naive reading falls into a DST gap of the local zone, and
// DATE_UNRECOGNIZED when no supported format matches.
func (r *Resolver) Resolve(text string) (time.Time, error) {
	input := strings.TrimSpace(text)
	if input == "" {
		return time.Time{}, scherrors.DateUnrecognized(text)
	}

	// 1. Strict RFC3339 carries its own zone.
	if t, err := time.Parse(time.RFC3339, input); err == nil {
		return t.UTC(), nil
	}

	// 2. Other zone-qualified layouts.
	for _, layout := range zoneQualifiedLayouts {
		if t, err := time.Parse(layout, input); err == nil {
			return t.UTC(), nil
		}
	}

	// 3. Zone-naive layouts, read as wall-clock time in the local zone.
	for _, entry := range zoneNaiveLayouts {
		wall, err := time.Parse(entry.layout, input)
		if err != nil {
			continue
		}
		local, ok := r.fromWallClock(wall)
		if !ok {
			return time.Time{}, scherrors.AmbiguousLocalTime(input, r.localZone.String())
		}
		return local.UTC(), nil
	}

	return time.Time{}, scherrors.DateUnrecognized(text)
}

// fromWallClock places the wall-clock reading of t into the local zone.
// Reports false when the reading does not exist there (DST gap): time.Date
// normalizes such readings, so a round-trip mismatch exposes them.
func (r *Resolver) fromWallClock(wall time.Time) (time.Time, bool) {
	local := time.Date(wall.Year(), wall.Month(), wall.Day(),
		wall.Hour(), wall.Minute(), wall.Second(), wall.Nanosecond(), r.localZone)

	if local.Hour() != wall.Hour() || local.Minute() != wall.Minute() ||
		local.Day() != wall.Day() || local.Month() != wall.Month() {
		return time.Time{}, false
	}
	return local, true
}
