package orchestrators

import (
	"context"

	"go.uber.org/zap"

	"bookclub/internal/domain/vote"
)

// VoteStoreForCast defines the store interface needed by CastVote and RetractVote.
type VoteStoreForCast interface {
	Cast(ctx context.Context, v vote.Vote) (vote.Tally, error)
	Retract(ctx context.Context, userID, suggestionID string) (vote.Tally, error)
}

// CastVoteInput carries input for the orchestrator.
type CastVoteInput struct {
	UserID       string
	SuggestionID string
}

// CastVoteDeps holds dependencies for CastVote and RetractVote.
type CastVoteDeps struct {
	VoteStore VoteStoreForCast
	Clock     Clock
}

// ExecuteCastVote records one vote and returns the suggestion's new count.
// PRE: UserID is an authenticated profile
// POST: Returns the count committed with the vote; vote.ErrAlreadyVoted on a repeat
// INVARIANT: At most one vote per (user, suggestion)
func ExecuteCastVote(ctx context.Context, input CastVoteInput, deps CastVoteDeps) (vote.Tally, error) {
	v := vote.Vote{
		ID:           generateID(),
		UserID:       input.UserID,
		SuggestionID: input.SuggestionID,
		CreatedAt:    deps.Clock.now(),
	}
	if err := v.Validate(); err != nil {
		return vote.Tally{}, err
	}

	tally, err := deps.VoteStore.Cast(ctx, v)
	if err != nil {
		return vote.Tally{}, err
	}
	zap.L().Info("vote_event", zap.String("event", "vote_cast"),
		zap.String("suggestion_id", v.SuggestionID), zap.String("user_id", v.UserID), zap.Int("vote_count", tally.VoteCount))
	return tally, nil
}

// ExecuteRetractVote removes the caller's vote and returns the new count.
// PRE: UserID is an authenticated profile
// POST: No vote remains for (user, suggestion); vote.ErrNotVoted when there was none
func ExecuteRetractVote(ctx context.Context, input CastVoteInput, deps CastVoteDeps) (vote.Tally, error) {
	if input.SuggestionID == "" {
		return vote.Tally{}, vote.ErrMissingSuggestion
	}
	tally, err := deps.VoteStore.Retract(ctx, input.UserID, input.SuggestionID)
	if err != nil {
		return vote.Tally{}, err
	}
	zap.L().Info("vote_event", zap.String("event", "vote_retracted"),
		zap.String("suggestion_id", input.SuggestionID), zap.String("user_id", input.UserID), zap.Int("vote_count", tally.VoteCount))
	return tally, nil
}
