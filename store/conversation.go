package store

import (
	"context"
)

// TurnRole tags a persisted conversation turn with its speaker.
type TurnRole string

const (
	TurnRoleUser      TurnRole = "USER"
	TurnRoleAssistant TurnRole = "ASSISTANT"
	TurnRoleSystem    TurnRole = "SYSTEM"
)

// ConversationTurn is a persisted dialogue turn. Turns are append-only;
// the only delete operation removes a whole session.
type ConversationTurn struct {
	ID             string
	SessionID      string
	Role           TurnRole
	Content        string
	RelatedEventID string
	CreatedTs      int64
}

// FindConversationTurn is the find condition for conversation turns.
// Zero values mean "no filter".
type FindConversationTurn struct {
	SessionID string
	Limit     int
}

// DeleteConversationTurns removes every turn of one session.
type DeleteConversationTurns struct {
	SessionID string
}

// CreateConversationTurn appends a turn to persistent history.
func (s *Store) CreateConversationTurn(ctx context.Context, create *ConversationTurn) (*ConversationTurn, error) {
	return s.driver.CreateConversationTurn(ctx, create)
}

// ListConversationTurns lists turns in append order.
func (s *Store) ListConversationTurns(ctx context.Context, find *FindConversationTurn) ([]*ConversationTurn, error) {
	return s.driver.ListConversationTurns(ctx, find)
}

// DeleteConversationTurns clears a session's history.
func (s *Store) DeleteConversationTurns(ctx context.Context, delete *DeleteConversationTurns) error {
	return s.driver.DeleteConversationTurns(ctx, delete)
}
