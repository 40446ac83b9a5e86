package member

import (
	"context"
	"time"

	domain "bookclub/internal/domain/member"
)

// Store persists Member state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Member, error)
	GetByProfileID(ctx context.Context, profileID string) (domain.Member, error)
	Create(ctx context.Context, m domain.Member) error
	CreateAtEnd(ctx context.Context, m domain.Member) (domain.Member, error)
	Save(ctx context.Context, m domain.Member) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Member, error)
	Link(ctx context.Context, memberID, profileID string, now time.Time) (domain.Member, error)
}

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	VisibleOnly  bool
	UnlinkedOnly bool
}
