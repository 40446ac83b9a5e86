package meetup

import (
	"context"

	domain "bookclub/internal/domain/meetup"
)

// Store persists Meetup state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Meetup, error)
	Save(ctx context.Context, m domain.Meetup) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Meetup, error)
	Count(ctx context.Context) (int, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	PublishedOnly bool
}
