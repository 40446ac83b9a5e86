package portal

import (
	"context"

	domain "bookclub/internal/domain/portal"
)

// Store persists portal Status per period.
type Store interface {
	Get(ctx context.Context, month, year int, category string) (domain.Status, error)
	Upsert(ctx context.Context, s domain.Status) (domain.Status, error)
	List(ctx context.Context, month, year int) ([]domain.Status, error)
}
