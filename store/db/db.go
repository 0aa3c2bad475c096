// Package db provides the database driver factory.
package db

import (
	"context"

	"github.com/pkg/errors"

	"github.com/hrygo/schedwise/internal/profile"
	"github.com/hrygo/schedwise/store"
	"github.com/hrygo/schedwise/store/db/postgres"
	"github.com/hrygo/schedwise/store/db/sqlite"
)

// NewDriver creates a new database driver based on the profile.
func NewDriver(ctx context.Context, profile *profile.Profile) (store.Driver, error) {
	switch profile.Driver {
	case "sqlite":
		return sqlite.NewDB(ctx, profile)
	case "postgres":
		return postgres.NewDB(ctx, profile)
	default:
		return nil, errors.Errorf("unknown db driver %q", profile.Driver)
	}
}
