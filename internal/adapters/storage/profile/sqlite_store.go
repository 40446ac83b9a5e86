package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookclub/internal/adapters/storage"
	domain "bookclub/internal/domain/profile"
)

const selectColumns = "SELECT id, email, password_hash, full_name, avatar_url, role, is_active, reset_token, reset_token_expiry, created_at, updated_at FROM profile"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new ProfileStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Profile by its ID.
// PRE: id is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Profile, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	return s.one(row)
}

// GetByEmail retrieves a Profile by its lower-cased email.
// PRE: email is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByEmail(ctx context.Context, email string) (domain.Profile, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE email = ?", domain.NormalizeEmail(email))
	return s.one(row)
}

// GetByResetToken retrieves the Profile holding token.
// PRE: token is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByResetToken(ctx context.Context, token string) (domain.Profile, error) {
	if token == "" {
		return domain.Profile{}, domain.ErrNotFound
	}
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE reset_token = ?", token)
	return s.one(row)
}

func (s *SQLiteStore) one(row *sql.Row) (domain.Profile, error) {
	entity, err := scanProfile(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Profile{}, fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	}
	return entity, err
}

// Create inserts a new Profile.
// PRE: entity has been validated
// POST: Entity is persisted, or domain.ErrEmailTaken when the email exists
func (s *SQLiteStore) Create(ctx context.Context, entity domain.Profile) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO profile (id, email, password_hash, full_name, avatar_url, role, is_active, reset_token, reset_token_expiry, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entity.ID,
		domain.NormalizeEmail(entity.Email),
		storage.NullString(entity.PasswordHash),
		entity.FullName,
		entity.AvatarURL,
		entity.Role,
		storage.BoolToInt(entity.IsActive),
		storage.NullString(entity.ResetToken),
		storage.NullTime(entity.ResetTokenExpiry),
		storage.FormatTime(entity.CreatedAt),
		storage.FormatTime(entity.UpdatedAt),
	)
	if storage.IsUniqueViolation(err) {
		return domain.ErrEmailTaken
	}
	return err
}

// Save updates an existing Profile.
// PRE: entity has been validated
// POST: Entity is persisted, or domain.ErrNotFound if no row has entity.ID
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Profile) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE profile SET email = ?, password_hash = ?, full_name = ?, avatar_url = ?, role = ?, is_active = ?,
		 reset_token = ?, reset_token_expiry = ?, updated_at = ? WHERE id = ?`,
		domain.NormalizeEmail(entity.Email),
		storage.NullString(entity.PasswordHash),
		entity.FullName,
		entity.AvatarURL,
		entity.Role,
		storage.BoolToInt(entity.IsActive),
		storage.NullString(entity.ResetToken),
		storage.NullTime(entity.ResetTokenExpiry),
		storage.FormatTime(entity.UpdatedAt),
		entity.ID,
	)
	if storage.IsUniqueViolation(err) {
		return domain.ErrEmailTaken
	}
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

// Delete removes a Profile. Suggestions and votes cascade; a linked member
// is unlinked.
// PRE: id is non-empty
// POST: Entity with given id is removed, or domain.ErrNotFound
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM profile WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

// List retrieves Profiles newest first.
// PRE: filter has valid parameters
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Profile, error) {
	var queryBuilder strings.Builder
	var args []any

	queryBuilder.WriteString(selectColumns)
	if filter.Role != "" {
		queryBuilder.WriteString(" WHERE role = ?")
		args = append(args, filter.Role)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = -1
	}
	queryBuilder.WriteString(" ORDER BY created_at DESC LIMIT ? OFFSET ?")
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Profile
	for rows.Next() {
		entity, err := scanProfile(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Count returns the total number of profiles.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM profile").Scan(&count)
	return count, err
}

// SetResetToken stores a reset token, replacing any previous one, and
// stamps updated_at with now.
// PRE: token is unique, expiry is in the future
// POST: Profile holds token until expiry
func (s *SQLiteStore) SetResetToken(ctx context.Context, id, token string, expiry, now time.Time) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE profile SET reset_token = ?, reset_token_expiry = ?, updated_at = ? WHERE id = ?",
		token, storage.FormatTime(expiry), storage.FormatTime(now), id,
	)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

// ConsumeResetToken sets a new password hash and clears the token in one
// conditional write, so a token is accepted at most once.
// PRE: passwordHash is a bcrypt hash
// POST: On success the token no longer matches any profile.
// Returns domain.ErrResetTokenInvalid or domain.ErrResetTokenExpired otherwise.
func (s *SQLiteStore) ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) (domain.Profile, error) {
	tx, err := storage.BeginTx(ctx, s.db)
	if err != nil {
		return domain.Profile{}, err
	}
	defer tx.Rollback()

	entity, err := scanProfile(tx.QueryRowContext(ctx, selectColumns+" WHERE reset_token = ?", token).Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Profile{}, domain.ErrResetTokenInvalid
	}
	if err != nil {
		return domain.Profile{}, err
	}
	if err := entity.CheckResetToken(token, now); err != nil {
		return domain.Profile{}, err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE profile SET password_hash = ?, reset_token = NULL, reset_token_expiry = NULL, updated_at = ?
		 WHERE id = ? AND reset_token = ?`,
		passwordHash, storage.FormatTime(now), entity.ID, token,
	)
	if err != nil {
		return domain.Profile{}, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return domain.Profile{}, err
	} else if n == 0 {
		return domain.Profile{}, domain.ErrResetTokenInvalid
	}
	if err := tx.Commit(); err != nil {
		return domain.Profile{}, err
	}

	entity.PasswordHash = passwordHash
	entity.ClearResetToken()
	entity.UpdatedAt = now
	return entity, nil
}

func requireOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// scanProfile extracts a Profile from a row scanner function.
func scanProfile(scan func(dest ...any) error) (domain.Profile, error) {
	var entity domain.Profile
	var passwordHash, resetToken, resetExpiry sql.NullString
	var isActive int
	var createdAt, updatedAt string
	err := scan(
		&entity.ID,
		&entity.Email,
		&passwordHash,
		&entity.FullName,
		&entity.AvatarURL,
		&entity.Role,
		&isActive,
		&resetToken,
		&resetExpiry,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return domain.Profile{}, err
	}
	entity.PasswordHash = passwordHash.String
	entity.ResetToken = resetToken.String
	entity.IsActive = isActive != 0
	if entity.ResetTokenExpiry, err = storage.ParseNullTime(resetExpiry); err != nil {
		return domain.Profile{}, err
	}
	if entity.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Profile{}, err
	}
	if entity.UpdatedAt, err = storage.ParseTime(updatedAt); err != nil {
		return domain.Profile{}, err
	}
	return entity, nil
}
