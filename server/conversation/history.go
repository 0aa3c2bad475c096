// Package conversation maintains the append-only dialogue log of one
// assistant session.
package conversation

import (
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Role tags a turn with its speaker.
type Role string

const (
	RoleUser      Role = "USER"
	RoleAssistant Role = "ASSISTANT"
	RoleSystem    Role = "SYSTEM"
)

// Turn is one message in the dialogue. Turns are never mutated after creation.
type Turn struct {
	ID             string
	Role           Role
	Content        string
	Timestamp      time.Time
	RelatedEventID string
}

// History owns the ordered sequence of turns for a single session.
// It is not safe for concurrent use; give each session its own instance.
type History struct {
	turns []Turn
	now   func() time.Time
}

// Summary describes the history without exposing every turn.
type Summary struct {
	TotalTurns     int
	UserTurns      int
	AssistantTurns int
	SystemTurns    int
	RecentPreview  []Turn
}

// New creates an empty history.
func New() *History {
	return &History{now: time.Now}
}

// NewWithClock creates a history with an injectable clock, for tests.
func NewWithClock(now func() time.Time) *History {
	return &History{now: now}
}

// Add appends a turn and returns it. Timestamps are taken from the clock at
// append time, so they are monotonically non-decreasing in wall time.
func (h *History) Add(role Role, content string, relatedEventID string) Turn {
	turn := Turn{
		ID:             ulid.Make().String(),
		Role:           role,
		Content:        content,
		Timestamp:      h.now().UTC(),
		RelatedEventID: relatedEventID,
	}
	h.turns = append(h.turns, turn)
	return turn
}

// AddUser appends a user turn.
func (h *History) AddUser(content string) Turn {
	return h.Add(RoleUser, content, "")
}

// AddAssistant appends an assistant turn, optionally linked to an event.
func (h *History) AddAssistant(content string, relatedEventID string) Turn {
	return h.Add(RoleAssistant, content, relatedEventID)
}

// Len returns the number of turns.
func (h *History) Len() int {
	return len(h.turns)
}

// All returns a copy of every turn in order.
func (h *History) All() []Turn {
	out := make([]Turn, len(h.turns))
	copy(out, h.turns)
	return out
}

// Recent returns the last n turns in original order. Shorter histories return
// fewer turns; this never fails.
func (h *History) Recent(n int) []Turn {
	if n <= 0 {
		return nil
	}
	start := 0
	if len(h.turns) > n {
		start = len(h.turns) - n
	}
	out := make([]Turn, len(h.turns)-start)
	copy(out, h.turns[start:])
	return out
}

// Summary returns turn counts by role plus a preview of the most recent turns.
func (h *History) Summary() Summary {
	s := Summary{TotalTurns: len(h.turns)}
	for _, turn := range h.turns {
		switch turn.Role {
		case RoleUser:
			s.UserTurns++
		case RoleAssistant:
			s.AssistantTurns++
		case RoleSystem:
			s.SystemTurns++
		}
	}
	s.RecentPreview = h.Recent(10)
	return s
}

// ContextString renders the last n turns as role-prefixed lines for LLM
// context.
func (h *History) ContextString(n int) string {
	recent := h.Recent(n)
	lines := make([]string, 0, len(recent))
	for _, turn := range recent {
		lines = append(lines, fmt.Sprintf("%s: %s", roleLabel(turn.Role), turn.Content))
	}
	return strings.Join(lines, "\n")
}

// Clear removes all turns. This is the only way a turn leaves the history.
func (h *History) Clear() {
	h.turns = nil
}

// Restore replaces the history with previously persisted turns, preserving
// their IDs and timestamps. Used when a session is resumed from storage.
func (h *History) Restore(turns []Turn) {
	h.turns = make([]Turn, len(turns))
	copy(h.turns, turns)
}

func roleLabel(r Role) string {
	switch r {
	case RoleUser:
		return "User"
	case RoleAssistant:
		return "Assistant"
	case RoleSystem:
		return "System"
	}
	return string(r)
}
