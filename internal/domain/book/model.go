package book

import (
	"errors"
	"strings"
	"time"

	"bookclub/internal/domain/period"
)

// Max length constants.
const (
	MaxTitleLength    = 200
	MaxAuthorLength   = 120
	MaxSynopsisLength = 4000
)

// Domain errors
var (
	ErrNotFound    = errors.New("book not found")
	ErrEmptyTitle  = errors.New("title is required")
	ErrEmptyAuthor = errors.New("author is required")
)

// Book is a title the club has read or will read.
type Book struct {
	ID         string
	Title      string
	Author     string
	Synopsis   string
	CoverURL   string
	Category   string
	Month      int
	Year       int
	IsSelected bool
	CreatedAt  time.Time
}

// Validate checks if the Book has valid data.
// PRE: Book struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (b *Book) Validate() error {
	if strings.TrimSpace(b.Title) == "" {
		return ErrEmptyTitle
	}
	if len(b.Title) > MaxTitleLength {
		return errors.New("title cannot exceed 200 characters")
	}
	if strings.TrimSpace(b.Author) == "" {
		return ErrEmptyAuthor
	}
	if len(b.Author) > MaxAuthorLength {
		return errors.New("author cannot exceed 120 characters")
	}
	if len(b.Synopsis) > MaxSynopsisLength {
		return errors.New("synopsis cannot exceed 4000 characters")
	}
	return b.Period().Validate()
}

// Period returns the reading period of the book.
func (b *Book) Period() period.Period {
	return period.Period{Month: b.Month, Year: b.Year, Category: b.Category}
}
