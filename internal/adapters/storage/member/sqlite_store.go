package member

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"bookclub/internal/adapters/storage"
	domain "bookclub/internal/domain/member"
)

const selectColumns = "SELECT id, profile_id, name, role, bio, image_url, social_links, is_visible, order_index, created_at, updated_at FROM member"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new MemberStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a Member by its ID.
// PRE: id is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id string) (domain.Member, error) {
	return one(s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id))
}

// GetByProfileID retrieves the Member linked to a profile.
// PRE: profileID is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByProfileID(ctx context.Context, profileID string) (domain.Member, error) {
	return one(s.db.QueryRowContext(ctx, selectColumns+" WHERE profile_id = ?", profileID))
}

func one(row *sql.Row) (domain.Member, error) {
	entity, err := scanMember(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Member{}, fmt.Errorf("%w: %w", domain.ErrNotFound, err)
	}
	return entity, err
}

// Create inserts a Member with the order index it carries.
// PRE: entity has been validated
// POST: Entity is persisted, or domain.ErrProfileHasMember
func (s *SQLiteStore) Create(ctx context.Context, entity domain.Member) error {
	links, err := encodeLinks(entity.SocialLinks)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO member (id, profile_id, name, role, bio, image_url, social_links, is_visible, order_index, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entity.ID, storage.NullString(entity.ProfileID), entity.Name, entity.Role, entity.Bio, entity.ImageURL,
		links, storage.BoolToInt(entity.IsVisible), entity.OrderIndex,
		storage.FormatTime(entity.CreatedAt), storage.FormatTime(entity.UpdatedAt),
	)
	if storage.IsUniqueViolation(err) {
		return domain.ErrProfileHasMember
	}
	return err
}

// CreateAtEnd inserts a Member after the current last one: its order index
// is computed as max(order_index)+1 inside the insert statement.
// PRE: entity has been validated (OrderIndex is ignored)
// POST: Returns the entity with its assigned OrderIndex
func (s *SQLiteStore) CreateAtEnd(ctx context.Context, entity domain.Member) (domain.Member, error) {
	links, err := encodeLinks(entity.SocialLinks)
	if err != nil {
		return domain.Member{}, err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO member (id, profile_id, name, role, bio, image_url, social_links, is_visible, order_index, created_at, updated_at)
		 SELECT ?, ?, ?, ?, ?, ?, ?, ?, COALESCE(MAX(order_index), 0) + 1, ?, ? FROM member`,
		entity.ID, storage.NullString(entity.ProfileID), entity.Name, entity.Role, entity.Bio, entity.ImageURL,
		links, storage.BoolToInt(entity.IsVisible),
		storage.FormatTime(entity.CreatedAt), storage.FormatTime(entity.UpdatedAt),
	)
	if storage.IsUniqueViolation(err) {
		return domain.Member{}, domain.ErrProfileHasMember
	}
	if err != nil {
		return domain.Member{}, err
	}
	return s.GetByID(ctx, entity.ID)
}

// Save updates an existing Member, including its profile link.
// PRE: entity has been validated
// POST: Entity is persisted, or domain.ErrNotFound
func (s *SQLiteStore) Save(ctx context.Context, entity domain.Member) error {
	links, err := encodeLinks(entity.SocialLinks)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE member SET profile_id = ?, name = ?, role = ?, bio = ?, image_url = ?, social_links = ?,
		 is_visible = ?, order_index = ?, updated_at = ? WHERE id = ?`,
		storage.NullString(entity.ProfileID), entity.Name, entity.Role, entity.Bio, entity.ImageURL, links,
		storage.BoolToInt(entity.IsVisible), entity.OrderIndex, storage.FormatTime(entity.UpdatedAt), entity.ID,
	)
	if storage.IsUniqueViolation(err) {
		return domain.ErrProfileHasMember
	}
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

// Delete removes a Member.
// PRE: id is non-empty
// POST: Entity with given id is removed, or domain.ErrNotFound
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM member WHERE id = ?", id)
	if err != nil {
		return err
	}
	return requireOneRow(res)
}

// List retrieves Members ordered by order_index.
// PRE: filter has valid parameters
// POST: Returns matching entities
func (s *SQLiteStore) List(ctx context.Context, filter ListFilter) ([]domain.Member, error) {
	var queryBuilder strings.Builder
	var conds []string

	queryBuilder.WriteString(selectColumns)
	if filter.VisibleOnly {
		conds = append(conds, "is_visible = 1")
	}
	if filter.UnlinkedOnly {
		conds = append(conds, "profile_id IS NULL")
	}
	if len(conds) > 0 {
		queryBuilder.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	queryBuilder.WriteString(" ORDER BY order_index ASC, created_at ASC")

	rows, err := s.db.QueryContext(ctx, queryBuilder.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []domain.Member
	for rows.Next() {
		entity, err := scanMember(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// Link sets a member's profile back-reference in one conditional write.
// PRE: memberID and profileID are non-empty
// POST: Returns the linked member. domain.ErrNotFound when the member is
// absent, domain.ErrAlreadyLinked when it belongs to another profile,
// domain.ErrProfileHasMember when the profile already has a member.
func (s *SQLiteStore) Link(ctx context.Context, memberID, profileID string, now time.Time) (domain.Member, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE member SET profile_id = ?, updated_at = ?
		 WHERE id = ? AND (profile_id IS NULL OR profile_id = ?)`,
		profileID, storage.FormatTime(now), memberID, profileID,
	)
	if storage.IsUniqueViolation(err) {
		return domain.Member{}, domain.ErrProfileHasMember
	}
	if err != nil {
		return domain.Member{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Member{}, err
	}
	if n == 0 {
		if _, err := s.GetByID(ctx, memberID); err != nil {
			return domain.Member{}, err
		}
		return domain.Member{}, domain.ErrAlreadyLinked
	}
	return s.GetByID(ctx, memberID)
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

func encodeLinks(links domain.SocialLinks) (string, error) {
	if len(links) == 0 {
		return "{}", nil
	}
	b, err := json.Marshal(links)
	if err != nil {
		return "", fmt.Errorf("encode social links: %w", err)
	}
	return string(b), nil
}

// scanMember extracts a Member from a row scanner function.
func scanMember(scan func(dest ...any) error) (domain.Member, error) {
	var entity domain.Member
	var profileID sql.NullString
	var links, createdAt, updatedAt string
	var isVisible int
	err := scan(
		&entity.ID,
		&profileID,
		&entity.Name,
		&entity.Role,
		&entity.Bio,
		&entity.ImageURL,
		&links,
		&isVisible,
		&entity.OrderIndex,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return domain.Member{}, err
	}
	entity.ProfileID = profileID.String
	entity.IsVisible = isVisible != 0
	entity.SocialLinks = domain.SocialLinks{}
	if links != "" {
		if err := json.Unmarshal([]byte(links), &entity.SocialLinks); err != nil {
			return domain.Member{}, fmt.Errorf("decode social links: %w", err)
		}
	}
	if entity.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Member{}, err
	}
	if entity.UpdatedAt, err = storage.ParseTime(updatedAt); err != nil {
		return domain.Member{}, err
	}
	return entity, nil
}
