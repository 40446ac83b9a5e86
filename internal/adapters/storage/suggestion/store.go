package suggestion

import (
	"context"

	domain "bookclub/internal/domain/suggestion"
)

// Store persists Suggestion state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Suggestion, error)
	CreateWithinQuota(ctx context.Context, s domain.Suggestion, quota int) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]Entry, error)
	CountByUser(ctx context.Context, userID string, filter ListFilter) (int, error)
	Count(ctx context.Context) (int, error)
}

// ListFilter selects one voting period. Zero values mean "any".
type ListFilter struct {
	Month    int
	Year     int
	Category string
}

// Entry is a suggestion with the display name of the profile that made it.
type Entry struct {
	domain.Suggestion
	SubmitterName string
}
