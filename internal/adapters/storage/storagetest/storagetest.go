// Package storagetest opens schema-initialised in-memory databases for tests.
package storagetest

import (
	"database/sql"
	"testing"

	_ "modernc.org/sqlite"

	"bookclub/internal/adapters/storage"
)

// NewDB returns an in-memory SQLite database with the full schema applied.
// The pool is pinned to one connection because every :memory: connection
// is a separate database.
func NewDB(t testing.TB) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := storage.InitDB(db); err != nil {
		t.Fatalf("init test db: %v", err)
	}
	return db
}
