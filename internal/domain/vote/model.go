package vote

import (
	"errors"
	"time"
)

// Domain errors
var (
	ErrMissingSuggestion = errors.New("suggestion id is required")
	ErrAlreadyVoted      = errors.New("already voted for this suggestion")
	ErrNotVoted          = errors.New("you have not voted for this book")
)

// Vote records one user's vote for one suggestion.
// INVARIANT: at most one Vote per (UserID, SuggestionID).
type Vote struct {
	ID           string
	UserID       string
	SuggestionID string
	CreatedAt    time.Time
}

// Validate checks if the Vote has valid data.
func (v *Vote) Validate() error {
	if v.SuggestionID == "" {
		return ErrMissingSuggestion
	}
	if v.UserID == "" {
		return errors.New("user is required")
	}
	return nil
}

// Tally is the result of a vote write: the suggestion's count after the
// write committed.
type Tally struct {
	SuggestionID string
	VoteCount    int
}
