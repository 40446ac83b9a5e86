package vote

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookclub/internal/adapters/storage"
	"bookclub/internal/adapters/storage/storagetest"
	suggestionDomain "bookclub/internal/domain/suggestion"
	domain "bookclub/internal/domain/vote"
)

func seed(t *testing.T, db *sql.DB, profiles ...string) {
	t.Helper()
	now := storage.FormatTime(time.Now())
	for _, id := range profiles {
		_, err := db.Exec(`INSERT INTO profile (id, email, full_name, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
			id, id+"@example.com", id, now, now)
		require.NoError(t, err)
	}
	_, err := db.Exec(`INSERT INTO suggestion (id, user_id, title, author, synopsis, category, month, year, created_at)
		VALUES ('s1', ?, 'T', 'A', 'S', 'fiction', 3, 2025, ?)`, profiles[0], now)
	require.NoError(t, err)
}

func newVote(id, userID string) domain.Vote {
	return domain.Vote{ID: id, UserID: userID, SuggestionID: "s1", CreatedAt: time.Now()}
}

func TestSQLiteStore_CastReturnsUpdatedCount(t *testing.T) {
	db := storagetest.NewDB(t)
	seed(t, db, "u1", "u2")
	store := NewSQLiteStore(db)
	ctx := context.Background()

	tally, err := store.Cast(ctx, newVote("v1", "u1"))
	require.NoError(t, err)
	assert.Equal(t, 1, tally.VoteCount)

	tally, err = store.Cast(ctx, newVote("v2", "u2"))
	require.NoError(t, err)
	assert.Equal(t, 2, tally.VoteCount)

	ids, err := store.SuggestionIDsByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"s1"}, ids)
}

func TestSQLiteStore_CastDuplicateRejected(t *testing.T) {
	db := storagetest.NewDB(t)
	seed(t, db, "u1")
	store := NewSQLiteStore(db)
	ctx := context.Background()

	_, err := store.Cast(ctx, newVote("v1", "u1"))
	require.NoError(t, err)
	_, err = store.Cast(ctx, newVote("v2", "u1"))
	assert.ErrorIs(t, err, domain.ErrAlreadyVoted)

	var rows, count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM vote").Scan(&rows))
	require.NoError(t, db.QueryRow("SELECT vote_count FROM suggestion WHERE id = 's1'").Scan(&count))
	assert.Equal(t, 1, rows)
	assert.Equal(t, 1, count)
}

func TestSQLiteStore_CastConcurrentDuplicates(t *testing.T) {
	db := storagetest.NewDB(t)
	seed(t, db, "u1")
	store := NewSQLiteStore(db)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = store.Cast(ctx, newVote(fmt.Sprintf("v%d", i), "u1"))
		}(i)
	}
	wg.Wait()

	var count int
	require.NoError(t, db.QueryRow("SELECT vote_count FROM suggestion WHERE id = 's1'").Scan(&count))
	assert.Equal(t, 1, count)
}

func TestSQLiteStore_CastUnknownSuggestion(t *testing.T) {
	db := storagetest.NewDB(t)
	seed(t, db, "u1")
	store := NewSQLiteStore(db)

	v := newVote("v1", "u1")
	v.SuggestionID = "missing"
	_, err := store.Cast(context.Background(), v)
	assert.ErrorIs(t, err, suggestionDomain.ErrNotFound)
}

func TestSQLiteStore_Retract(t *testing.T) {
	db := storagetest.NewDB(t)
	seed(t, db, "u1")
	store := NewSQLiteStore(db)
	ctx := context.Background()

	_, err := store.Cast(ctx, newVote("v1", "u1"))
	require.NoError(t, err)

	tally, err := store.Retract(ctx, "u1", "s1")
	require.NoError(t, err)
	assert.Equal(t, 0, tally.VoteCount)

	_, err = store.Retract(ctx, "u1", "s1")
	assert.ErrorIs(t, err, domain.ErrNotVoted)
}

func TestSQLiteStore_CastRollsBackOnInsertError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT 1 FROM suggestion").WithArgs("s1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec("INSERT INTO vote").WillReturnError(errors.New("database is locked"))
	mock.ExpectRollback()

	_, err = NewSQLiteStore(db).Cast(context.Background(), newVote("v1", "u1"))
	assert.EqualError(t, err, "database is locked")
	assert.NoError(t, mock.ExpectationsWereMet())
}
