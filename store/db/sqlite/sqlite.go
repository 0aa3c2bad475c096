// Package sqlite implements the store driver on SQLite.
package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"github.com/hrygo/schedwise/internal/profile"
)

// DB is the SQLite driver.
type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens the SQLite database at profile.DSN and ensures the schema exists.
func NewDB(ctx context.Context, profile *profile.Profile) (*DB, error) {
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	// Connection pragmas are set via the DSN so every pooled
	// connection gets them.
	sqliteDB, err := sql.Open("sqlite", profile.DSN+"?_pragma=foreign_keys(0)&_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	driver := &DB{db: sqliteDB, profile: profile}
	if err := driver.migrate(ctx); err != nil {
		_ = sqliteDB.Close()
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

func placeholders(n int) []string {
	list := make([]string, n)
	for i := range list {
		list[i] = "?"
	}
	return list
}
