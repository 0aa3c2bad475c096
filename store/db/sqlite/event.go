package sqlite

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lithammer/shortuuid/v4"
	"github.com/pkg/errors"

	"github.com/hrygo/schedwise/store"
)

func (d *DB) CreateEvent(ctx context.Context, create *store.Event) (*store.Event, error) {
	if create.ID == "" {
		create.ID = uuid.NewString()
	}
	if create.UID == "" {
		create.UID = shortuuid.New()
	}
	now := time.Now().Unix()
	create.CreatedTs = now
	create.UpdatedTs = now

	attendees, err := json.Marshal(create.Attendees)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal attendees")
	}

	fields := []string{"id", "uid", "title", "description", "location", "start_ts", "end_ts", "attendees", "priority", "created_ts", "updated_ts"}
	args := []any{create.ID, create.UID, create.Title, create.Description, create.Location, create.StartTs, create.EndTs, string(attendees), create.Priority.String(), create.CreatedTs, create.UpdatedTs}

	stmt := "INSERT INTO event (" + strings.Join(fields, ", ") + ") VALUES (" + strings.Join(placeholders(len(args)), ", ") + ")"
	if _, err := d.db.ExecContext(ctx, stmt, args...); err != nil {
		return nil, errors.Wrap(err, "failed to insert event")
	}
	return create, nil
}

func (d *DB) ListEvents(ctx context.Context, find *store.FindEvent) ([]*store.Event, error) {
	where, args := []string{"1 = 1"}, []any{}

	if v := find.ID; v != nil {
		where, args = append(where, "id = ?"), append(args, *v)
	}
	if v := find.UID; v != nil {
		where, args = append(where, "uid = ?"), append(args, *v)
	}
	// Half-open overlap against [RangeStart, RangeEnd).
	if v := find.RangeEnd; v != nil {
		where, args = append(where, "start_ts < ?"), append(args, *v)
	}
	if v := find.RangeStart; v != nil {
		where, args = append(where, "end_ts > ?"), append(args, *v)
	}

	query := "SELECT id, uid, title, description, location, start_ts, end_ts, attendees, priority, created_ts, updated_ts FROM event WHERE " + strings.Join(where, " AND ") + " ORDER BY start_ts ASC"
	if v := find.Limit; v != nil {
		query += " LIMIT ?"
		args = append(args, *v)
	}

	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "failed to query events")
	}
	defer rows.Close()

	list := []*store.Event{}
	for rows.Next() {
		event := &store.Event{}
		var attendees, priority string
		if err := rows.Scan(
			&event.ID,
			&event.UID,
			&event.Title,
			&event.Description,
			&event.Location,
			&event.StartTs,
			&event.EndTs,
			&attendees,
			&priority,
			&event.CreatedTs,
			&event.UpdatedTs,
		); err != nil {
			return nil, errors.Wrap(err, "failed to scan event")
		}
		if err := json.Unmarshal([]byte(attendees), &event.Attendees); err != nil {
			return nil, errors.Wrap(err, "failed to unmarshal attendees")
		}
		event.Priority = store.ParsePriority(priority)
		list = append(list, event)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return list, nil
}

func (d *DB) DeleteEvent(ctx context.Context, delete *store.DeleteEvent) error {
	result, err := d.db.ExecContext(ctx, "DELETE FROM event WHERE id = ?", delete.ID)
	if err != nil {
		return errors.Wrap(err, "failed to delete event")
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return errors.Errorf("event %s not found", delete.ID)
	}
	return nil
}
