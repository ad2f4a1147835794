// Package store provides the data access layer for the dataset catalog.
//
// The store does not open its own database. It receives a *sql.DB opened
// through dbopen so the caller controls pragmas and pool settings.
package store

import "database/sql"

// Store wraps the catalog database.
type Store struct {
	DB *sql.DB
}

// NewStore creates a Store from an already-opened database connection.
func NewStore(db *sql.DB) *Store {
	return &Store{DB: db}
}
