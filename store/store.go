// Package store provides persistence for calendar events and conversation
// history behind a database-agnostic Driver interface.
package store

import (
	"github.com/hrygo/schedwise/internal/profile"
)

// Store provides database access to all raw objects.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

// GetDriver returns the underlying driver.
func (s *Store) GetDriver() Driver {
	return s.driver
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.driver.Close()
}
