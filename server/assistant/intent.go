// Package assistant turns interpreted user intents into calendar
// operations and assistant replies.
package assistant

import (
	"context"

	"github.com/hrygo/schedwise/server/conversation"
	"github.com/hrygo/schedwise/store"
)

// Action is the operation an interpreted user message asks for.
type Action string

const (
	ActionCreateEvent     Action = "create_event"
	ActionListEvents      Action = "list_events"
	ActionSearchEvents    Action = "search_events"
	ActionDeleteEvent     Action = "delete_event"
	ActionGetEventDetails Action = "get_event_details"
	ActionGeneralResponse Action = "general_response"
)

// MissingField marks a required event field the user has not provided yet.
type MissingField string

const (
	MissingTitle     MissingField = "title"
	MissingStartTime MissingField = "start_time"
	MissingEndTime   MissingField = "end_time"
)

// PartialEvent carries the event fields extracted from a user message.
// StartTime and EndTime are raw datetime strings, resolved by the
// dispatcher rather than trusted as-is.
type PartialEvent struct {
	Title       string
	Description string
	Location    string
	StartTime   string
	EndTime     string
	Attendees   []string
	Priority    string
}

// Intent is the structured interpretation of one user message.
type Intent struct {
	Action Action
	Event  *PartialEvent

	// Query is the match text for search, delete and details actions.
	Query string

	// RangeStart and RangeEnd are raw datetime strings bounding a
	// list action. Both empty means the caller picks a default range.
	RangeStart string
	RangeEnd   string

	Missing      []MissingField
	ResponseText string
}

// IntentSource interprets a raw user message into an Intent. The
// contextInfo string summarizes the current calendar so the source can
// ground relative references, and recent carries the latest turns.
type IntentSource interface {
	Interpret(ctx context.Context, userText string, contextInfo string, recent []conversation.Turn) (*Intent, error)
}

// CalendarBackend is the event storage surface the dispatcher drives.
// *store.Store satisfies it. Backend calls are never retried here; a
// failed call surfaces as an error reply for the current turn.
type CalendarBackend interface {
	CreateEvent(ctx context.Context, create *store.Event) (*store.Event, error)
	ListEvents(ctx context.Context, find *store.FindEvent) ([]*store.Event, error)
	DeleteEvent(ctx context.Context, delete *store.DeleteEvent) error
}
