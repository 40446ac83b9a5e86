package projections

import (
	"context"

	"golang.org/x/sync/errgroup"

	"bookclub/internal/adapters/storage/suggestion"
	domainSuggestion "bookclub/internal/domain/suggestion"
)

// GetSuggestionBoardQuery selects a period. ViewerID is empty for anonymous callers.
type GetSuggestionBoardQuery struct {
	Month    int
	Year     int
	Category string
	ViewerID string
}

// GetSuggestionBoardResult carries the board and the viewer's standing.
type GetSuggestionBoardResult struct {
	Suggestions         []suggestion.Entry
	UserSuggestionCount int
	Remaining           int
	VotedIDs            []string
}

// GetSuggestionBoardDeps holds dependencies for GetSuggestionBoard.
type GetSuggestionBoardDeps struct {
	SuggestionStore SuggestionStore
	VoteStore       VoteStore
}

// QueryGetSuggestionBoard lists a period's suggestions, most votes first.
// PRE: none
// POST: Viewer fields are zero when ViewerID is empty; VotedIDs never nil
func QueryGetSuggestionBoard(ctx context.Context, query GetSuggestionBoardQuery, deps GetSuggestionBoardDeps) (GetSuggestionBoardResult, error) {
	filter := suggestion.ListFilter{Month: query.Month, Year: query.Year, Category: query.Category}
	result := GetSuggestionBoardResult{VotedIDs: []string{}}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		entries, err := deps.SuggestionStore.List(ctx, filter)
		result.Suggestions = entries
		return err
	})
	if query.ViewerID != "" {
		g.Go(func() error {
			n, err := deps.SuggestionStore.CountByUser(ctx, query.ViewerID, filter)
			result.UserSuggestionCount = n
			return err
		})
		g.Go(func() error {
			ids, err := deps.VoteStore.SuggestionIDsByUser(ctx, query.ViewerID)
			if ids != nil {
				result.VotedIDs = ids
			}
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return GetSuggestionBoardResult{}, err
	}

	if result.Suggestions == nil {
		result.Suggestions = []suggestion.Entry{}
	}
	if query.ViewerID != "" {
		result.Remaining = max(domainSuggestion.MaxPerPeriod-result.UserSuggestionCount, 0)
	}
	return result, nil
}
