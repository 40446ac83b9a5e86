package gallery

import (
	"context"

	domain "bookclub/internal/domain/gallery"
)

// Store persists gallery Item state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Item, error)
	CreateAtEnd(ctx context.Context, item domain.Item) (domain.Item, error)
	Save(ctx context.Context, item domain.Item) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Item, error)
	Count(ctx context.Context) (int, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Month int
	Year  int
	Type  string
}
