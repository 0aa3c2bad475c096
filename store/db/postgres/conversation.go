package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pkg/errors"

	"github.com/hrygo/schedwise/store"
)

func (d *DB) CreateConversationTurn(ctx context.Context, create *store.ConversationTurn) (*store.ConversationTurn, error) {
	if create.ID == "" {
		create.ID = ulid.Make().String()
	}
	if create.CreatedTs == 0 {
		create.CreatedTs = time.Now().Unix()
	}

	fields := []string{"id", "session_id", "role", "content", "related_event_id", "created_ts"}
	args := []any{create.ID, create.SessionID, create.Role, create.Content, create.RelatedEventID, create.CreatedTs}

	stmt := "INSERT INTO conversation_turn (" + strings.Join(fields, ", ") + ") VALUES (" + strings.Join(placeholders(len(args)), ", ") + ")"
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, errors.Wrap(err, "failed to insert conversation turn")
	}
	return create, nil
}

func (d *DB) ListConversationTurns(ctx context.Context, find *store.FindConversationTurn) ([]*store.ConversationTurn, error) {
	where, args := []string{"TRUE"}, []any{}
	if find.SessionID != "" {
		args = append(args, find.SessionID)
		where = append(where, "session_id = "+placeholder(len(args)))
	}

	query := "SELECT id, session_id, role, content, related_event_id, created_ts FROM conversation_turn WHERE " + strings.Join(where, " AND ") + " ORDER BY created_ts ASC, id ASC"
	if find.Limit > 0 {
		args = append(args, find.Limit)
		query += " LIMIT " + placeholder(len(args))
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query conversation turns")
	}
	defer rows.Close()

	list := []*store.ConversationTurn{}
	for rows.Next() {
		turn := &store.ConversationTurn{}
		if err := rows.Scan(
			&turn.ID,
			&turn.SessionID,
			&turn.Role,
			&turn.Content,
			&turn.RelatedEventID,
			&turn.CreatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan conversation turn")
		}
		list = append(list, turn)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (d *DB) DeleteConversationTurns(ctx context.Context, delete *store.DeleteConversationTurns) error {
	if _, err := d.db.ExecContext(ctx, "DELETE FROM conversation_turn WHERE session_id = "+placeholder(1), delete.SessionID); err != nil {
		return errors.Wrap(err, "failed to delete conversation turns")
	}
	return nil
}
