package portal

import (
	"context"
	"database/sql"
	"errors"

	"bookclub/internal/adapters/storage"
	domain "bookclub/internal/domain/portal"
)

const selectColumns = "SELECT id, month, year, category, suggestions_open, voting_open, updated_at FROM portal_status"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new PortalStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Get returns the status for one period. A period with no row is closed.
// POST: Returns a Status with both flags false when no row exists
func (s *SQLiteStore) Get(ctx context.Context, month, year int, category string) (domain.Status, error) {
	entity, err := scanStatus(s.db.QueryRowContext(ctx,
		selectColumns+" WHERE month = ? AND year = ? AND category = ?", month, year, category).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Status{Month: month, Year: year, Category: category}, nil
	}
	return entity, err
}

// Upsert writes the flags for a period, keeping the existing row ID.
// PRE: entity has been validated
// POST: Exactly one row exists for (Month, Year, Category)
func (s *SQLiteStore) Upsert(ctx context.Context, entity domain.Status) (domain.Status, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO portal_status (id, month, year, category, suggestions_open, voting_open, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(month, year, category) DO UPDATE SET
		   suggestions_open=excluded.suggestions_open, voting_open=excluded.voting_open, updated_at=excluded.updated_at`,
		entity.ID, entity.Month, entity.Year, entity.Category,
		storage.BoolToInt(entity.SuggestionsOpen), storage.BoolToInt(entity.VotingOpen),
		storage.FormatTime(entity.UpdatedAt),
	)
	if err != nil {
		return domain.Status{}, err
	}
	return s.Get(ctx, entity.Month, entity.Year, entity.Category)
}

// List returns the stored statuses for a month, fiction first.
func (s *SQLiteStore) List(ctx context.Context, month, year int) ([]domain.Status, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+" WHERE month = ? AND year = ? ORDER BY category", month, year)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Status
	for rows.Next() {
		entity, err := scanStatus(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

func scanStatus(scan func(dest ...any) error) (domain.Status, error) {
	var entity domain.Status
	var suggestionsOpen, votingOpen int
	var updatedAt string
	err := scan(&entity.ID, &entity.Month, &entity.Year, &entity.Category, &suggestionsOpen, &votingOpen, &updatedAt)
	if err != nil {
		return domain.Status{}, err
	}
	entity.SuggestionsOpen = suggestionsOpen == 1
	entity.VotingOpen = votingOpen == 1
	entity.UpdatedAt, err = storage.ParseTime(updatedAt)
	return entity, err
}
