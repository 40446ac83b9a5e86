package meetup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookclub/internal/adapters/storage/storagetest"
	domain "bookclub/internal/domain/meetup"
)

func newMeetup(id string, at time.Time, published bool) domain.Meetup {
	m := domain.Meetup{
		ID: id, Title: "Meetup " + id, VenueName: "Terra Kulture", Address: "1376 Tiamiyu Savage St",
		EventDate: at, IsPublished: published, CreatedAt: at, UpdatedAt: at,
	}
	m.Normalize()
	return m
}

func TestSQLiteStore_SaveAndGet(t *testing.T) {
	store := NewSQLiteStore(storagetest.NewDB(t))
	ctx := context.Background()

	start := time.Date(2025, 3, 15, 14, 0, 0, 0, time.UTC)
	m := newMeetup("m1", start, true)
	lat, long := 6.4281, 3.4219
	m.Latitude, m.Longitude = &lat, &long
	m.EndTime = start.Add(2 * time.Hour)
	require.NoError(t, store.Save(ctx, m))

	got, err := store.GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultCity, got.City)
	assert.Equal(t, 3, got.Month)
	assert.Equal(t, 2025, got.Year)
	assert.True(t, got.EventDate.Equal(start))
	assert.True(t, got.EndTime.Equal(m.EndTime))
	require.NotNil(t, got.Latitude)
	assert.InDelta(t, lat, *got.Latitude, 1e-9)
	assert.True(t, got.IsPublished)

	got.Latitude, got.Longitude = nil, nil
	got.EndTime = time.Time{}
	require.NoError(t, store.Save(ctx, got))
	got, err = store.GetByID(ctx, "m1")
	require.NoError(t, err)
	assert.Nil(t, got.Latitude)
	assert.True(t, got.EndTime.IsZero())
}

func TestSQLiteStore_ListPublishedNewestFirst(t *testing.T) {
	store := NewSQLiteStore(storagetest.NewDB(t))
	ctx := context.Background()

	base := time.Date(2025, 1, 10, 18, 0, 0, 0, time.UTC)
	require.NoError(t, store.Save(ctx, newMeetup("jan", base, true)))
	require.NoError(t, store.Save(ctx, newMeetup("feb", base.AddDate(0, 1, 0), true)))
	require.NoError(t, store.Save(ctx, newMeetup("draft", base.AddDate(0, 2, 0), false)))

	all, err := store.List(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "draft", all[0].ID)

	published, err := store.List(ctx, ListFilter{PublishedOnly: true})
	require.NoError(t, err)
	require.Len(t, published, 2)
	assert.Equal(t, "feb", published[0].ID)
	assert.Equal(t, "jan", published[1].ID)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestSQLiteStore_DeleteAndNotFound(t *testing.T) {
	store := NewSQLiteStore(storagetest.NewDB(t))
	ctx := context.Background()

	_, err := store.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "nope"), domain.ErrNotFound)
}
