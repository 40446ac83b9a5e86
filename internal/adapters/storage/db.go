package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// TimeLayout is the fixed-width UTC layout used for every stored timestamp,
// so that lexical order in SQL equals chronological order.
const TimeLayout = "2006-01-02T15:04:05.000000Z"

// DSN builds the connection string for a database file with WAL mode,
// a busy timeout and foreign keys enabled on every connection.
func DSN(path string) string {
	return path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
}

const schema = `
CREATE TABLE IF NOT EXISTS profile (
	id TEXT PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT,
	full_name TEXT NOT NULL,
	avatar_url TEXT NOT NULL DEFAULT '',
	role TEXT NOT NULL DEFAULT 'member' CHECK (role IN ('member', 'admin', 'super_admin')),
	is_active INTEGER NOT NULL DEFAULT 1,
	reset_token TEXT UNIQUE,
	reset_token_expiry TEXT,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS member (
	id TEXT PRIMARY KEY,
	profile_id TEXT UNIQUE REFERENCES profile(id) ON DELETE SET NULL,
	name TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT '',
	bio TEXT NOT NULL DEFAULT '',
	image_url TEXT NOT NULL DEFAULT '',
	social_links TEXT NOT NULL DEFAULT '{}',
	is_visible INTEGER NOT NULL DEFAULT 1,
	order_index INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS book (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	author TEXT NOT NULL,
	synopsis TEXT NOT NULL DEFAULT '',
	cover_url TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL CHECK (category IN ('fiction', 'non-fiction')),
	month INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
	year INTEGER NOT NULL,
	is_selected INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS suggestion (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES profile(id) ON DELETE CASCADE,
	title TEXT NOT NULL,
	author TEXT NOT NULL,
	synopsis TEXT NOT NULL,
	cover_url TEXT NOT NULL DEFAULT '',
	category TEXT NOT NULL CHECK (category IN ('fiction', 'non-fiction')),
	month INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
	year INTEGER NOT NULL,
	vote_count INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_suggestion_user_period ON suggestion (user_id, month, year, category);
CREATE INDEX IF NOT EXISTS idx_suggestion_period ON suggestion (month, year, category);

CREATE TABLE IF NOT EXISTS vote (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL REFERENCES profile(id) ON DELETE CASCADE,
	suggestion_id TEXT NOT NULL REFERENCES suggestion(id) ON DELETE CASCADE,
	created_at TEXT NOT NULL,
	UNIQUE (user_id, suggestion_id)
);

CREATE TRIGGER IF NOT EXISTS vote_count_insert AFTER INSERT ON vote
BEGIN
	UPDATE suggestion SET vote_count = vote_count + 1 WHERE id = NEW.suggestion_id;
END;

CREATE TRIGGER IF NOT EXISTS vote_count_delete AFTER DELETE ON vote
BEGIN
	UPDATE suggestion SET vote_count = MAX(vote_count - 1, 0) WHERE id = OLD.suggestion_id;
END;

CREATE TABLE IF NOT EXISTS gallery_item (
	id TEXT PRIMARY KEY,
	type TEXT NOT NULL CHECK (type IN ('image', 'video')),
	url TEXT NOT NULL,
	thumbnail_url TEXT NOT NULL DEFAULT '',
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	month INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
	year INTEGER NOT NULL,
	order_index INTEGER NOT NULL DEFAULT 0,
	created_by TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS meetup (
	id TEXT PRIMARY KEY,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	venue_name TEXT NOT NULL,
	address TEXT NOT NULL,
	city TEXT NOT NULL DEFAULT 'Lagos',
	latitude REAL,
	longitude REAL,
	google_maps_url TEXT NOT NULL DEFAULT '',
	event_date TEXT NOT NULL,
	end_time TEXT,
	month INTEGER NOT NULL,
	year INTEGER NOT NULL,
	image_url TEXT NOT NULL DEFAULT '',
	is_published INTEGER NOT NULL DEFAULT 0,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_meetup_event_date ON meetup (event_date);

CREATE TABLE IF NOT EXISTS portal_status (
	id TEXT PRIMARY KEY,
	month INTEGER NOT NULL CHECK (month BETWEEN 1 AND 12),
	year INTEGER NOT NULL,
	category TEXT NOT NULL CHECK (category IN ('fiction', 'non-fiction')),
	suggestions_open INTEGER NOT NULL DEFAULT 0,
	voting_open INTEGER NOT NULL DEFAULT 0,
	updated_at TEXT NOT NULL,
	UNIQUE (month, year, category)
);
`

// InitDB initializes the database schema.
// PRE: db is a valid database connection
// POST: All tables, indexes and triggers exist; foreign keys are enforced
func InitDB(db *sql.DB) error {
	// Enable foreign key enforcement
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

// FormatTime renders t for storage.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// NullTime renders t for a nullable column; the zero time becomes NULL.
func NullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return FormatTime(t)
}

// NullString maps "" to NULL.
func NullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// ParseTime parses a stored timestamp. Empty input yields the zero time.
func ParseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	formats := []string{
		TimeLayout,
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time: %s", s)
}

// ParseNullTime parses a nullable timestamp column.
func ParseNullTime(ns sql.NullString) (time.Time, error) {
	if !ns.Valid {
		return time.Time{}, nil
	}
	return ParseTime(ns.String)
}

// IsUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY
// constraint failure.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		code := sqliteErr.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE || code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// BoolToInt maps a bool to SQLite's 0/1.
func BoolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
