package profile

import (
	"context"
	"time"

	domain "bookclub/internal/domain/profile"
)

// Store persists Profile state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Profile, error)
	GetByEmail(ctx context.Context, email string) (domain.Profile, error)
	GetByResetToken(ctx context.Context, token string) (domain.Profile, error)
	Create(ctx context.Context, p domain.Profile) error
	Save(ctx context.Context, p domain.Profile) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Profile, error)
	Count(ctx context.Context) (int, error)
	SetResetToken(ctx context.Context, id, token string, expiry, now time.Time) error
	ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) (domain.Profile, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit  int
	Offset int
	Role   string
}
