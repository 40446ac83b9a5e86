package suggestion

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bookclub/internal/adapters/storage"
	domain "bookclub/internal/domain/suggestion"
)

const columns = "s.id, s.user_id, s.title, s.author, s.synopsis, s.cover_url, s.category, s.month, s.year, s.vote_count, s.created_at"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new SuggestionStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Suggestion by its ID.
// PRE: id is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Suggestion, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+columns+" FROM suggestion s WHERE s.id = ?", id)
	entity, err := scanSuggestion(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Suggestion{}, fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	}
	return entity, err
}

// CreateWithinQuota inserts the suggestion only while the user has fewer
// than quota suggestions for the same (month, year, category). The count and
// the insert are one statement, so concurrent requests cannot exceed quota.
// PRE: entity has been validated
// POST: Entity is persisted, or domain.ErrQuotaExceeded and nothing is written
func (s *SQLiteStore) CreateWithinQuota(ctx context.Context, entity domain.Suggestion, quota int) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO suggestion (id, user_id, title, author, synopsis, cover_url, category, month, year, vote_count, created_at)
		 SELECT ?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?
		 WHERE (SELECT COUNT(*) FROM suggestion WHERE user_id = ? AND month = ? AND year = ? AND category = ?) < ?`,
		entity.ID, entity.UserID, entity.Title, entity.Author, entity.Synopsis, entity.CoverURL,
		entity.Category, entity.Month, entity.Year, storage.FormatTime(entity.CreatedAt),
		entity.UserID, entity.Month, entity.Year, entity.Category, quota,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrQuotaExceeded
	}
	return nil
}

// Delete removes a Suggestion and, by cascade, its votes.
// PRE: id is non-empty
// POST: Entity with given id is removed, or domain.ErrNotFound
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM suggestion WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List retrieves suggestions for a period, most votes first, with the
// submitter's name.
// PRE: filter has valid parameters
// POST: Returns matching entries
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]Entry, error) {
	where, args := filter.where("s.")
	query := "SELECT " + columns + ", COALESCE(p.full_name, '') FROM suggestion s LEFT JOIN profile p ON p.id = s.user_id" +
		where + " ORDER BY s.vote_count DESC, s.created_at ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []Entry
	for rows.Next() {
		var entry Entry
		var name string
		suggestion, err := scanSuggestion(func(dest ...any) error {
			return rows.Scan(append(dest, &name)...)
		})
		if err != nil {
			return nil, err
		}
		entry.Suggestion = suggestion
		entry.SubmitterName = name
		results = append(results, entry)
	}
	return results, rows.Err()
}

// CountByUser counts a user's suggestions within the filter's period.
func (s *SQLiteStore) CountByUser(ctx context.Context, userID string, filter ListFilter) (int, error) {
	where, args := filter.where("")
	if where == "" {
		where = " WHERE user_id = ?"
	} else {
		where += " AND user_id = ?"
	}
	args = append(args, userID)

	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM suggestion"+where, args...).Scan(&count)
	return count, err
}

// Count returns the total number of suggestions.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM suggestion").Scan(&count)
	return count, err
}

func (f ListFilter) where(prefix string) (string, []any) {
	var conds []string
	var args []any
	if f.Month != 0 {
		conds = append(conds, prefix+"month = ?")
		args = append(args, f.Month)
	}
	if f.Year != 0 {
		conds = append(conds, prefix+"year = ?")
		args = append(args, f.Year)
	}
	if f.Category != "" {
		conds = append(conds, prefix+"category = ?")
		args = append(args, f.Category)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// scanSuggestion extracts a Suggestion from a row scanner function.
func scanSuggestion(scan func(dest ...any) error) (domain.Suggestion, error) {
	var entity domain.Suggestion
	var createdAt string
	err := scan(
		&entity.ID,
		&entity.UserID,
		&entity.Title,
		&entity.Author,
		&entity.Synopsis,
		&entity.CoverURL,
		&entity.Category,
		&entity.Month,
		&entity.Year,
		&entity.VoteCount,
		&createdAt,
	)
	if err != nil {
		return domain.Suggestion{}, err
	}
	entity.CreatedAt, err = storage.ParseTime(createdAt)
	return entity, err
}
