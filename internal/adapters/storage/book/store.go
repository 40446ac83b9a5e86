package book

import (
	"context"

	domain "bookclub/internal/domain/book"
)

// Store persists Book state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Book, error)
	Save(ctx context.Context, b domain.Book) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Book, error)
	Count(ctx context.Context) (int, error)
}

// ListFilter carries filtering parameters for List operations.
// Zero values mean "any".
type ListFilter struct {
	SelectedOnly bool
	Category     string
	Month        int
	Year         int
}
