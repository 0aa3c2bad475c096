// Package timezone provides timezone utilities for schedwise.
//
// This package handles timezone parsing, day boundaries, and display
// formatting to ensure consistent time handling across the assistant.
package timezone

import (
	"fmt"
	"time"
)

// UTC is the coordinated universal time timezone.
var UTC = time.UTC

// Parse parses an IANA timezone identifier (e.g., "Asia/Tokyo").
// If the timezone is invalid, returns UTC and an error.
func Parse(tz string) (*time.Location, error) {
	if tz == "" || tz == "UTC" {
		return UTC, nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return UTC, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}

	return loc, nil
}

// MustParse parses a timezone or panics if invalid.
// Use this for constants that are known to be valid at compile time.
func MustParse(tz string) *time.Location {
	loc, err := Parse(tz)
	if err != nil {
		panic(err)
	}
	return loc
}

// IsValid checks if a timezone identifier is valid.
func IsValid(tz string) bool {
	_, err := Parse(tz)
	return err == nil
}

// StartOfDay returns the start of the day (00:00:00) in the given timezone.
func StartOfDay(t time.Time, tz *time.Location) time.Time {
	if tz == nil {
		tz = UTC
	}
	local := t.In(tz)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, tz)
}

// EndOfDay returns the end of the day (23:59:59.999999999) in the given timezone.
func EndOfDay(t time.Time, tz *time.Location) time.Time {
	if tz == nil {
		tz = UTC
	}
	local := t.In(tz)
	return time.Date(local.Year(), local.Month(), local.Day(), 23, 59, 59, 999999999, tz)
}

// FormatEventTime formats an event's start/end pair for display.
// Rules:
//   - Same day: "2006-01-02 15:04 - 16:00"
//   - Crossing midnight: "2006-01-02 15:04 - 2006-01-03 09:00"
func FormatEventTime(start, end time.Time, tz *time.Location) string {
	if tz == nil {
		tz = UTC
	}
	s := start.In(tz)
	e := end.In(tz)

	if s.Year() == e.Year() && s.YearDay() == e.YearDay() {
		return fmt.Sprintf("%s - %s", s.Format("2006-01-02 15:04"), e.Format("15:04"))
	}
	return fmt.Sprintf("%s - %s", s.Format("2006-01-02 15:04"), e.Format("2006-01-02 15:04"))
}

// FormatEventLine formats one event for a listing block.
// Format: "1. 2026-01-21 14:00 - 16:00 - Team Meeting @ Room A"
func FormatEventLine(start, end time.Time, title, location string, index int, tz *time.Location) string {
	result := fmt.Sprintf("%d. %s - %s", index+1, FormatEventTime(start, end, tz), title)
	if location != "" {
		result += fmt.Sprintf(" @ %s", location)
	}
	return result
}

// Common timezone identifiers used in tests and defaults.
const (
	TimezoneUTC       = "UTC"
	TimezoneAsiaTokyo = "Asia/Tokyo"
	TimezoneNewYork   = "America/New_York"
)

// Pre-loaded locations for common zones.
var (
	LocationAsiaTokyo = MustParse(TimezoneAsiaTokyo)
	LocationNewYork   = MustParse(TimezoneNewYork)
)
