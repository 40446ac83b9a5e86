package vote

import (
	"context"

	domain "bookclub/internal/domain/vote"
)

// Store persists Vote state. Cast and Retract return the suggestion's
// vote count as read inside the same transaction as the write.
type Store interface {
	Cast(ctx context.Context, v domain.Vote) (domain.Tally, error)
	Retract(ctx context.Context, userID, suggestionID string) (domain.Tally, error)
	SuggestionIDsByUser(ctx context.Context, userID string) ([]string, error)
}
