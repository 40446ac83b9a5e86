package meetup

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bookclub/internal/adapters/storage"
	domain "bookclub/internal/domain/meetup"
)

const selectColumns = `SELECT id, title, description, venue_name, address, city, latitude, longitude, google_maps_url,
	event_date, end_time, month, year, image_url, is_published, created_at, updated_at FROM meetup`

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new MeetupStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Meetup by its ID.
// PRE: id is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Meetup, error) {
	entity, err := scanMeetup(s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Meetup{}, fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	}
	return entity, err
}

// Save persists a Meetup to the database.
// PRE: entity has been normalized and validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Meetup) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO meetup (id, title, description, venue_name, address, city, latitude, longitude, google_maps_url,
		   event_date, end_time, month, year, image_url, is_published, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   title=excluded.title, description=excluded.description, venue_name=excluded.venue_name,
		   address=excluded.address, city=excluded.city, latitude=excluded.latitude, longitude=excluded.longitude,
		   google_maps_url=excluded.google_maps_url, event_date=excluded.event_date, end_time=excluded.end_time,
		   month=excluded.month, year=excluded.year, image_url=excluded.image_url,
		   is_published=excluded.is_published, updated_at=excluded.updated_at`,
		entity.ID, entity.Title, entity.Description, entity.VenueName, entity.Address, entity.City,
		nullFloat(entity.Latitude), nullFloat(entity.Longitude), entity.GoogleMapsURL,
		storage.FormatTime(entity.EventDate), storage.NullTime(entity.EndTime),
		entity.Month, entity.Year, entity.ImageURL, storage.BoolToInt(entity.IsPublished),
		storage.FormatTime(entity.CreatedAt), storage.FormatTime(entity.UpdatedAt),
	)
	return err
}

// Delete removes a Meetup from the database.
// PRE: id is non-empty
// POST: Entity with given id is removed, or domain.ErrNotFound
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM meetup WHERE id = ?", id)
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

// List retrieves Meetups, most recent event first.
// PRE: filter has valid parameters
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Meetup, error) {
	query := selectColumns
	if filter.PublishedOnly {
		query += " WHERE is_published = 1"
	}
	query += " ORDER BY event_date DESC"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Meetup
	for rows.Next() {
		entity, err := scanMeetup(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the total number of meetups.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM meetup").Scan(&count)
	return count, err
}

func nullFloat(f *float64) any {
	if f == nil {
		return nil
	}
	return *f
}

// scanMeetup extracts a Meetup from a row scanner function.
func scanMeetup(scan func(dest ...any) error) (domain.Meetup, error) {
	var entity domain.Meetup
	var lat, long sql.NullFloat64
	var eventDate, createdAt, updatedAt string
	var endTime sql.NullString
	var published int
	err := scan(
		&entity.ID,
		&entity.Title,
		&entity.Description,
		&entity.VenueName,
		&entity.Address,
		&entity.City,
		&lat,
		&long,
		&entity.GoogleMapsURL,
		&eventDate,
		&endTime,
		&entity.Month,
		&entity.Year,
		&entity.ImageURL,
		&published,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return domain.Meetup{}, err
	}
	if lat.Valid {
		entity.Latitude = &lat.Float64
	}
	if long.Valid {
		entity.Longitude = &long.Float64
	}
	entity.IsPublished = published == 1
	if entity.EventDate, err = storage.ParseTime(eventDate); err != nil {
		return domain.Meetup{}, err
	}
	if entity.EndTime, err = storage.ParseNullTime(endTime); err != nil {
		return domain.Meetup{}, err
	}
	if entity.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Meetup{}, err
	}
	entity.UpdatedAt, err = storage.ParseTime(updatedAt)
	return entity, err
}
