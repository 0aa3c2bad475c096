package store

import (
	"context"
)

// Priority is the importance level of an event.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

func (p Priority) String() string {
	return string(p)
}

// ParsePriority maps a free-form priority string to a Priority.
// Unknown values fall back to Medium.
func ParsePriority(s string) Priority {
	switch Priority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return Priority(s)
	}
	switch s {
	case "Low", "low":
		return PriorityLow
	case "High", "high":
		return PriorityHigh
	case "Urgent", "urgent":
		return PriorityUrgent
	}
	return PriorityMedium
}

// Event is the object representing a calendar event. The store owns the
// authoritative copy; callers never cache events beyond the current operation.
type Event struct {
	ID          string
	UID         string
	Title       string
	Description string
	Location    string
	StartTs     int64
	EndTs       int64
	Attendees   []string
	Priority    Priority
	CreatedTs   int64
	UpdatedTs   int64
}

// FindEvent is the find condition for events.
type FindEvent struct {
	ID  *string
	UID *string

	// Overlap window: events with StartTs < RangeEnd and EndTs > RangeStart.
	RangeStart *int64
	RangeEnd   *int64

	Limit *int
}

// DeleteEvent is the delete request for events.
type DeleteEvent struct {
	ID string
}

// CreateEvent creates a new event, filling ID, UID and timestamps.
func (s *Store) CreateEvent(ctx context.Context, create *Event) (*Event, error) {
	return s.driver.CreateEvent(ctx, create)
}

// ListEvents lists events matching the find condition, ordered by start time.
func (s *Store) ListEvents(ctx context.Context, find *FindEvent) ([]*Event, error) {
	return s.driver.ListEvents(ctx, find)
}

// GetEvent returns a single event or nil when none matches.
func (s *Store) GetEvent(ctx context.Context, find *FindEvent) (*Event, error) {
	list, err := s.driver.ListEvents(ctx, find)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return list[0], nil
}

// DeleteEvent deletes an event by ID.
func (s *Store) DeleteEvent(ctx context.Context, delete *DeleteEvent) error {
	return s.driver.DeleteEvent(ctx, delete)
}
