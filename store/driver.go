package store

import (
	"context"
	"database/sql"
)

// Driver is the interface a store database driver implements.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	// Event model related methods.
	CreateEvent(ctx context.Context, create *Event) (*Event, error)
	ListEvents(ctx context.Context, find *FindEvent) ([]*Event, error)
	DeleteEvent(ctx context.Context, delete *DeleteEvent) error

	// ConversationTurn model related methods.
	CreateConversationTurn(ctx context.Context, create *ConversationTurn) (*ConversationTurn, error)
	ListConversationTurns(ctx context.Context, find *FindConversationTurn) ([]*ConversationTurn, error)
	DeleteConversationTurns(ctx context.Context, delete *DeleteConversationTurns) error
}
