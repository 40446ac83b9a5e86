package orchestrators

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"bookclub/internal/application/htmlsanitize"
	"bookclub/internal/domain/suggestion"
)

// SuggestionStoreForCreate defines the store interface needed by CreateSuggestion.
type SuggestionStoreForCreate interface {
	CreateWithinQuota(ctx context.Context, s suggestion.Suggestion, quota int) error
}

// CreateSuggestionInput carries input for the orchestrator.
type CreateSuggestionInput struct {
	UserID   string
	Title    string
	Author   string
	Synopsis string
	CoverURL string
	Category string
	Month    int
	Year     int
}

// CreateSuggestionDeps holds dependencies for CreateSuggestion.
type CreateSuggestionDeps struct {
	SuggestionStore SuggestionStoreForCreate
	Clock           Clock
}

// ExecuteCreateSuggestion records a book suggestion for one period.
// PRE: UserID is an authenticated profile
// POST: Suggestion created with zero votes, or suggestion.ErrQuotaExceeded
// INVARIANT: At most suggestion.MaxPerPeriod per (user, month, year, category),
// enforced by the store in the same statement as the insert
func ExecuteCreateSuggestion(ctx context.Context, input CreateSuggestionInput, deps CreateSuggestionDeps) (suggestion.Suggestion, error) {
	s := suggestion.Suggestion{
		ID:        generateID(),
		UserID:    input.UserID,
		Title:     htmlsanitize.PlainText(input.Title),
		Author:    htmlsanitize.PlainText(input.Author),
		Synopsis:  htmlsanitize.PlainText(input.Synopsis),
		CoverURL:  strings.TrimSpace(input.CoverURL),
		Category:  input.Category,
		Month:     input.Month,
		Year:      input.Year,
		CreatedAt: deps.Clock.now(),
	}
	if err := s.Validate(); err != nil {
		return suggestion.Suggestion{}, err
	}

	if err := deps.SuggestionStore.CreateWithinQuota(ctx, s, suggestion.MaxPerPeriod); err != nil {
		if errors.Is(err, suggestion.ErrQuotaExceeded) {
			zap.L().Info("suggestion_event", zap.String("event", "quota_exceeded"), zap.String("user_id", s.UserID))
		}
		return suggestion.Suggestion{}, err
	}

	zap.L().Info("suggestion_event", zap.String("event", "suggestion_created"),
		zap.String("suggestion_id", s.ID), zap.String("user_id", s.UserID),
		zap.Int("month", s.Month), zap.Int("year", s.Year), zap.String("category", s.Category))
	return s, nil
}
