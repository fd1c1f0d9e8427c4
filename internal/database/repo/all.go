// Package repo implements tubevault's stores against the sqlite database.
package repo

import (
	"database/sql"

	"tubevault/internal/contracts"
)

// Store bundles the repo stores behind the contracts.Store interface.
type Store struct {
	vs *VideoStore
}

// InitStores returns a store bundle with injected database.
func InitStores(db *sql.DB) *Store {
	return &Store{
		vs: GetVideoStore(db),
	}
}

// VideoStore returns the video store instance.
func (s *Store) VideoStore() contracts.VideoStore {
	return s.vs
}
