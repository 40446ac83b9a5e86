package book

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bookclub/internal/adapters/storage"
	domain "bookclub/internal/domain/book"
)

const selectColumns = "SELECT id, title, author, synopsis, cover_url, category, month, year, is_selected, created_at FROM book"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new BookStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Book by its ID.
// PRE: id is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Book, error) {
	entity, err := scanBook(s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Book{}, fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	}
	return entity, err
}

// Save persists a Book to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Book) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO book (id, title, author, synopsis, cover_url, category, month, year, is_selected, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title=excluded.title, author=excluded.author, synopsis=excluded.synopsis, cover_url=excluded.cover_url,
		   category=excluded.category, month=excluded.month, year=excluded.year, is_selected=excluded.is_selected`,
		entity.ID, entity.Title, entity.Author, entity.Synopsis, entity.CoverURL, entity.Category,
		entity.Month, entity.Year, storage.BoolToInt(entity.IsSelected), storage.FormatTime(entity.CreatedAt),
	)
	return err
}

// Delete removes a Book from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed, or domain.ErrNotFound
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM book WHERE id = ?", id)
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

// List retrieves Books, newest period first.
// PRE: filter has valid parameters
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Book, error) {
	var queryBuilder strings.Builder
	var conds []string
	var args []any

	queryBuilder.WriteString(selectColumns)
	if filter.SelectedOnly {
		conds = append(conds, "is_selected = 1")
	}
	if filter.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, filter.Category)
	}
	if filter.Month != 0 {
		conds = append(conds, "month = ?")
		args = append(args, filter.Month)
	}
	if filter.Year != 0 {
		conds = append(conds, "year = ?")
		args = append(args, filter.Year)
	}
	if len(conds) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY year DESC, month DESC, created_at DESC")

	rows, err := s.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Book
	for rows.Next() {
		entity, err := scanBook(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the total number of books.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM book").Scan(&count)
	return count, err
}

// scanBook extracts a Book from a row scanner function.
func scanBook(scan func(dest ...any) error) (domain.Book, error) {
	var entity domain.Book
	var isSelected int
	var createdAt string
	err := scan(
		&entity.ID,
		&entity.Title,
		&entity.Author,
		&entity.Synopsis,
		&entity.CoverURL,
		&entity.Category,
		&entity.Month,
		&entity.Year,
		&isSelected,
		&createdAt,
	)
	if err != nil {
		return domain.Book{}, err
	}
	entity.IsSelected = isSelected != 0
	entity.CreatedAt, err = storage.ParseTime(createdAt)
	return entity, err
}
