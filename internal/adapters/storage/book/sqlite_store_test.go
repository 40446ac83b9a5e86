package book

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookclub/internal/adapters/storage/storagetest"
	domain "bookclub/internal/domain/book"
	"bookclub/internal/domain/period"
)

func newBook(id string, month, year int, category string, selected bool) domain.Book {
	return domain.Book{
		ID: id, Title: "Title " + id, Author: "Author", Category: category,
		Month: month, Year: year, IsSelected: selected, CreatedAt: time.Now(),
	}
}

func TestSQLiteStore_ListOrdersNewestPeriodFirst(t *testing.T) {
	store := NewSQLiteStore(storagetest.NewDB(t))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, newBook("jan24", 1, 2024, period.CategoryFiction, true)))
	require.NoError(t, store.Save(ctx, newBook("mar25", 3, 2025, period.CategoryFiction, true)))
	require.NoError(t, store.Save(ctx, newBook("feb25", 2, 2025, period.CategoryNonFiction, true)))
	require.NoError(t, store.Save(ctx, newBook("draft", 4, 2025, period.CategoryFiction, false)))

	selected, err := store.List(ctx, ListFilter{SelectedOnly: true})
	require.NoError(t, err)
	var ids []string
	for _, b := range selected {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"mar25", "feb25", "jan24"}, ids)

	fiction2025, err := store.List(ctx, ListFilter{Category: period.CategoryFiction, Year: 2025})
	require.NoError(t, err)
	assert.Len(t, fiction2025, 2)

	march, err := store.List(ctx, ListFilter{Month: 3, Year: 2025, SelectedOnly: true})
	require.NoError(t, err)
	require.Len(t, march, 1)
	assert.Equal(t, "mar25", march[0].ID)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestSQLiteStore_SaveUpdatesAndDelete(t *testing.T) {
	store := NewSQLiteStore(storagetest.NewDB(t))
	ctx := context.Background()

	b := newBook("b1", 3, 2025, period.CategoryFiction, false)
	require.NoError(t, store.Save(ctx, b))
	b.IsSelected = true
	b.Title = "Purple Hibiscus"
	require.NoError(t, store.Save(ctx, b))

	got, err := store.GetByID(ctx, "b1")
	require.NoError(t, err)
	assert.True(t, got.IsSelected)
	assert.Equal(t, "Purple Hibiscus", got.Title)

	require.NoError(t, store.Delete(ctx, "b1"))
	_, err = store.GetByID(ctx, "b1")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, store.Delete(ctx, "b1"), domain.ErrNotFound)
}
