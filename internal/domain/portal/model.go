package portal

import (
	"time"

	"bookclub/internal/domain/period"
)

// Status records which feature is open for one period. Admins open
// suggestions first, then voting.
type Status struct {
	ID              string
	Month           int
	Year            int
	Category        string
	SuggestionsOpen bool
	VotingOpen      bool
	UpdatedAt       time.Time
}

// Validate checks the period fields.
func (s *Status) Validate() error {
	return period.Period{Month: s.Month, Year: s.Year, Category: s.Category}.Validate()
}
