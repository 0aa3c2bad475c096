// Package postgres implements the store driver on PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/hrygo/schedwise/internal/profile"
)

// DB is the PostgreSQL driver.
type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens a PostgreSQL connection and ensures the schema exists.
func NewDB(ctx context.Context, profile *profile.Profile) (*DB, error) {
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	pgDB, err := sql.Open("postgres", profile.DSN)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open db")
	}
	if err := pgDB.PingContext(ctx); err != nil {
		_ = pgDB.Close()
		return nil, errors.Wrap(err, "failed to ping db")
	}

	driver := &DB{db: pgDB, profile: profile}
	if err := driver.migrate(ctx); err != nil {
		_ = pgDB.Close()
		return nil, err
	}
	return driver, nil
}

func (d *DB) migrate(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS event (
	id TEXT NOT NULL PRIMARY KEY,
	uid TEXT NOT NULL UNIQUE,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	location TEXT NOT NULL DEFAULT '',
	start_ts BIGINT NOT NULL,
	end_ts BIGINT NOT NULL,
	attendees TEXT NOT NULL DEFAULT '[]',
	priority TEXT NOT NULL DEFAULT 'MEDIUM',
	created_ts BIGINT NOT NULL,
	updated_ts BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_event_start_ts ON event (start_ts);

CREATE TABLE IF NOT EXISTS conversation_turn (
	id TEXT NOT NULL PRIMARY KEY,
	session_id TEXT NOT NULL,
	role TEXT NOT NULL,
	content TEXT NOT NULL,
	related_event_id TEXT NOT NULL DEFAULT '',
	created_ts BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_conversation_turn_session_id ON conversation_turn (session_id, created_ts);
`
	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to migrate schema")
	}
	return nil
}

// GetDB returns the underlying database handle.
func (d *DB) GetDB() *sql.DB {
	return d.db
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

func placeholder(n int) string {
	return fmt.Sprintf("$%d", n)
}

func placeholders(n int) []string {
	list := make([]string, n)
	for i := range list {
		list[i] = placeholder(i + 1)
	}
	return list
}
