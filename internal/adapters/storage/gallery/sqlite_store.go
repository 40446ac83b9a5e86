package gallery

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"bookclub/internal/adapters/storage"
	domain "bookclub/internal/domain/gallery"
)

const selectColumns = "SELECT id, type, url, thumbnail_url, title, description, month, year, order_index, created_by, created_at FROM gallery_item"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new GalleryStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves an Item by its ID.
// PRE: id is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Item, error) {
	entity, err := scanItem(s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Item{}, fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	}
	return entity, err
}

// CreateAtEnd inserts an Item with order index max+1.
// PRE: entity has been validated (OrderIndex is ignored)
// POST: Returns the entity with its assigned OrderIndex
func (s *SQLiteStore) CreateAtEnd(ctx context.Context, entity domain.Item) (domain.Item, error) {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO gallery_item (id, type, url, thumbnail_url, title, description, month, year, order_index, created_by, created_at)
		 SELECT ?, ?, ?, ?, ?, ?, ?, ?, COALESCE(MAX(order_index), 0) + 1, ?, ? FROM gallery_item`,
		entity.ID, entity.Type, entity.URL, entity.ThumbnailURL, entity.Title, entity.Description,
		entity.Month, entity.Year, entity.CreatedBy, storage.FormatTime(entity.CreatedAt),
	)
	if err != nil {
		return domain.Item{}, err
	}
	return s.GetByID(ctx, entity.ID)
}

// Save persists an Item to the database.
// PRE: entity has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Item) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO gallery_item (id, type, url, thumbnail_url, title, description, month, year, order_index, created_by, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   type=excluded.type, url=excluded.url, thumbnail_url=excluded.thumbnail_url, title=excluded.title,
		   description=excluded.description, month=excluded.month, year=excluded.year, order_index=excluded.order_index`,
		entity.ID, entity.Type, entity.URL, entity.ThumbnailURL, entity.Title, entity.Description,
		entity.Month, entity.Year, entity.OrderIndex, entity.CreatedBy, storage.FormatTime(entity.CreatedAt),
	)
	return err
}

// Delete removes an Item from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed, or domain.ErrNotFound
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM gallery_item WHERE id = ?", id)
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

// List retrieves Items by display order.
// PRE: filter has valid parameters
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Item, error) {
	var queryBuilder strings.Builder
	var conds []string
	var args []any

	queryBuilder.WriteString(selectColumns)
	if filter.Month != 0 {
		conds = append(conds, "month = ?")
		args = append(args, filter.Month)
	}
	if filter.Year != 0 {
		conds = append(conds, "year = ?")
		args = append(args, filter.Year)
	}
	if filter.Type != "" {
		conds = append(conds, "type = ?")
		args = append(args, filter.Type)
	}
	if len(conds) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY order_index ASC, created_at ASC")

	rows, err := s.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Item
	for rows.Next() {
		entity, err := scanItem(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the total number of gallery items.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM gallery_item").Scan(&count)
	return count, err
}

// scanItem extracts an Item from a row scanner function.
func scanItem(scan func(dest ...any) error) (domain.Item, error) {
	var entity domain.Item
	var createdAt string
	err := scan(
		&entity.ID,
		&entity.Type,
		&entity.URL,
		&entity.ThumbnailURL,
		&entity.Title,
		&entity.Description,
		&entity.Month,
		&entity.Year,
		&entity.OrderIndex,
		&entity.CreatedBy,
		&createdAt,
	)
	if err != nil {
		return domain.Item{}, err
	}
	entity.CreatedAt, err = storage.ParseTime(createdAt)
	return entity, err
}
