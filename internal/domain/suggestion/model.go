package suggestion

import (
	"errors"
	"strings"
	"time"

	"bookclub/internal/domain/period"
)

// MaxPerPeriod is the number of suggestions one user may make per
// (month, year, category).
const MaxPerPeriod = 3

// Max length constants.
const (
	MaxTitleLength    = 200
	MaxAuthorLength   = 120
	MaxSynopsisLength = 4000
)

// Domain errors
var (
	ErrNotFound       = errors.New("suggestion not found")
	ErrQuotaExceeded  = errors.New("suggestion limit of 3 per month reached")
	ErrMissingFields  = errors.New("title, author, synopsis, category, month and year are required")
	ErrNotOwner       = errors.New("you can only delete your own suggestions")
	ErrTitleTooLong   = errors.New("title cannot exceed 200 characters")
	ErrAuthorTooLong  = errors.New("author cannot exceed 120 characters")
	ErrSynopsisTooBig = errors.New("synopsis cannot exceed 4000 characters")
)

// Suggestion is a member-submitted book candidate for one period.
// INVARIANT: VoteCount equals the number of vote rows referencing the suggestion.
type Suggestion struct {
	ID        string
	UserID    string
	Title     string
	Author    string
	Synopsis  string
	CoverURL  string
	Category  string
	Month     int
	Year      int
	VoteCount int
	CreatedAt time.Time
}

// Validate checks if the Suggestion has valid data.
// PRE: Suggestion struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (s *Suggestion) Validate() error {
	if strings.TrimSpace(s.Title) == "" || strings.TrimSpace(s.Author) == "" ||
		strings.TrimSpace(s.Synopsis) == "" || s.Category == "" || s.Month == 0 || s.Year == 0 {
		return ErrMissingFields
	}
	if len(s.Title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	if len(s.Author) > MaxAuthorLength {
		return ErrAuthorTooLong
	}
	if len(s.Synopsis) > MaxSynopsisLength {
		return ErrSynopsisTooBig
	}
	return s.Period().Validate()
}

// Period returns the voting period of the suggestion.
func (s *Suggestion) Period() period.Period {
	return period.Period{Month: s.Month, Year: s.Year, Category: s.Category}
}

// CanDelete reports whether the actor may delete the suggestion.
func (s *Suggestion) CanDelete(actorID string, actorIsAdmin bool) bool {
	return actorIsAdmin || (actorID != "" && actorID == s.UserID)
}
