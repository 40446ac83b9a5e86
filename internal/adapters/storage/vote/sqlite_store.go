package vote

import (
	"context"
	"database/sql"
	"errors"

	"bookclub/internal/adapters/storage"
	suggestionDomain "bookclub/internal/domain/suggestion"
	domain "bookclub/internal/domain/vote"
)

// SQLiteStore implements Store using SQLite. The vote_count column is kept
// by triggers on the vote table.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new VoteStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// Cast inserts a vote and returns the updated count.
// PRE: v has been validated
// POST: Exactly one vote row exists for (UserID, SuggestionID).
// Returns suggestion.ErrNotFound for an unknown suggestion and
// domain.ErrAlreadyVoted for a duplicate.
func (s *SQLiteStore) Cast(ctx context.Context, v domain.Vote) (domain.Tally, error) {
	tx, err := storage.BeginTx(ctx, s.db)
	if err != nil {
		return domain.Tally{}, err
	}
	defer tx.Rollback()

	if err := suggestionExists(ctx, tx, v.SuggestionID); err != nil {
		return domain.Tally{}, err
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO vote (id, user_id, suggestion_id, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(user_id, suggestion_id) DO NOTHING`,
		v.ID, v.UserID, v.SuggestionID, storage.FormatTime(v.CreatedAt),
	)
	if err != nil {
		return domain.Tally{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Tally{}, err
	}
	if n == 0 {
		return domain.Tally{}, domain.ErrAlreadyVoted
	}

	return commitWithTally(ctx, tx, v.SuggestionID)
}

// Retract removes a user's vote and returns the updated count.
// PRE: userID and suggestionID are non-empty
// POST: No vote row exists for (userID, suggestionID). Returns
// domain.ErrNotVoted when there was none.
func (s *SQLiteStore) Retract(ctx context.Context, userID, suggestionID string) (domain.Tally, error) {
	tx, err := storage.BeginTx(ctx, s.db)
	if err != nil {
		return domain.Tally{}, err
	}
	defer tx.Rollback()

	if err := suggestionExists(ctx, tx, suggestionID); err != nil {
		return domain.Tally{}, err
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM vote WHERE user_id = ? AND suggestion_id = ?", userID, suggestionID)
	if err != nil {
		return domain.Tally{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return domain.Tally{}, err
	}
	if n == 0 {
		return domain.Tally{}, domain.ErrNotVoted
	}

	return commitWithTally(ctx, tx, suggestionID)
}

// SuggestionIDsByUser lists the suggestions a user has voted for.
func (s *SQLiteStore) SuggestionIDsByUser(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT suggestion_id FROM vote WHERE user_id = ? ORDER BY created_at", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func suggestionExists(ctx context.Context, tx storage.Tx, id string) error {
	var one int
	err := tx.QueryRowContext(ctx, "SELECT 1 FROM suggestion WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return suggestionDomain.ErrNotFound
	}
	return err
}

func commitWithTally(ctx context.Context, tx storage.Tx, suggestionID string) (domain.Tally, error) {
	tally := domain.Tally{SuggestionID: suggestionID}
	if err := tx.QueryRowContext(ctx, "SELECT vote_count FROM suggestion WHERE id = ?", suggestionID).Scan(&tally.VoteCount); err != nil {
		return domain.Tally{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Tally{}, err
	}
	return tally, nil
}
