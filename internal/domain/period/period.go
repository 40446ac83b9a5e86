// Package period holds the reading-period vocabulary shared by books,
// suggestions, gallery items and the portal status: a month, a year and a
// book category.
package period

import (
	"errors"
	"time"
)

// Category constants.
const (
	CategoryFiction    = "fiction"
	CategoryNonFiction = "non-fiction"
)

// Year bounds accepted for any period.
const (
	MinYear = 2000
	MaxYear = 2100
)

// Domain errors
var (
	ErrInvalidMonth    = errors.New("month must be between 1 and 12")
	ErrInvalidYear     = errors.New("year must be between 2000 and 2100")
	ErrInvalidCategory = errors.New("category must be 'fiction' or 'non-fiction'")
)

// Period identifies one month of one category.
type Period struct {
	Month    int
	Year     int
	Category string
}

// ValidateMonth checks 1 <= month <= 12.
func ValidateMonth(month int) error {
	if month < 1 || month > 12 {
		return ErrInvalidMonth
	}
	return nil
}

// ValidateYear checks the year is within the accepted range.
func ValidateYear(year int) error {
	if year < MinYear || year > MaxYear {
		return ErrInvalidYear
	}
	return nil
}

// ValidateCategory checks category is fiction or non-fiction.
func ValidateCategory(category string) error {
	if category != CategoryFiction && category != CategoryNonFiction {
		return ErrInvalidCategory
	}
	return nil
}

// Validate checks all three fields.
// PRE: none
// POST: returns the first violation or nil
func (p Period) Validate() error {
	if err := ValidateMonth(p.Month); err != nil {
		return err
	}
	if err := ValidateYear(p.Year); err != nil {
		return err
	}
	return ValidateCategory(p.Category)
}

// Of returns the month and year of t in UTC.
func Of(t time.Time) (month, year int) {
	t = t.UTC()
	return int(t.Month()), t.Year()
}
