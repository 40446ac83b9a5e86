package orchestrators

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"bookclub/internal/domain/suggestion"
)

// SuggestionStoreForDelete defines the store interface needed by DeleteSuggestion.
type SuggestionStoreForDelete interface {
	GetByID(ctx context.Context, id string) (suggestion.Suggestion, error)
	Delete(ctx context.Context, id string) error
}

// DeleteSuggestionInput carries input for the orchestrator.
type DeleteSuggestionInput struct {
	Actor Actor
	ID    string
}

// DeleteSuggestionDeps holds dependencies for DeleteSuggestion.
type DeleteSuggestionDeps struct {
	SuggestionStore SuggestionStoreForDelete
}

// ErrSuggestionIDRequired is returned when no suggestion id is supplied.
var ErrSuggestionIDRequired = errors.New("suggestion id is required")

// ExecuteDeleteSuggestion removes a suggestion and its votes.
// PRE: Actor is authenticated
// POST: Suggestion removed, or suggestion.ErrNotOwner when the actor is neither owner nor admin
func ExecuteDeleteSuggestion(ctx context.Context, input DeleteSuggestionInput, deps DeleteSuggestionDeps) error {
	if input.ID == "" {
		return ErrSuggestionIDRequired
	}
	s, err := deps.SuggestionStore.GetByID(ctx, input.ID)
	if err != nil {
		return err
	}
	if !s.CanDelete(input.Actor.ID, isAdminRole(input.Actor.Role)) {
		return suggestion.ErrNotOwner
	}
	if err := deps.SuggestionStore.Delete(ctx, input.ID); err != nil {
		return err
	}
	zap.L().Info("suggestion_event", zap.String("event", "suggestion_deleted"), zap.String("suggestion_id", input.ID), zap.String("actor_id", input.Actor.ID))
	return nil
}
