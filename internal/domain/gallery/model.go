package gallery

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"bookclub/internal/domain/period"
)

// Media type constants.
const (
	TypeImage = "image"
	TypeVideo = "video"
)

// Max length constants.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 2000
)

// Domain errors
var (
	ErrNotFound      = errors.New("gallery item not found")
	ErrMissingFields = errors.New("missing required fields (type, url, title, month, year)")
	ErrInvalidType   = errors.New("type must be 'image' or 'video'")
	ErrInvalidURL    = errors.New("url must be an absolute http(s) URL")
)

// Item is one photo or video in the gallery.
type Item struct {
	ID           string
	Type         string
	URL          string
	ThumbnailURL string
	Title        string
	Description  string
	Month        int
	Year         int
	OrderIndex   int
	CreatedBy    string
	CreatedAt    time.Time
}

// Validate checks if the Item has valid data.
// PRE: Item struct is initialized
// POST: Returns error if validation fails, nil otherwise
func (i *Item) Validate() error {
	if i.Type == "" || strings.TrimSpace(i.URL) == "" || strings.TrimSpace(i.Title) == "" || i.Month == 0 || i.Year == 0 {
		return ErrMissingFields
	}
	if i.Type != TypeImage && i.Type != TypeVideo {
		return ErrInvalidType
	}
	if err := period.ValidateMonth(i.Month); err != nil {
		return err
	}
	if err := period.ValidateYear(i.Year); err != nil {
		return err
	}
	if !isHTTPURL(i.URL) || (i.ThumbnailURL != "" && !isHTTPURL(i.ThumbnailURL)) {
		return ErrInvalidURL
	}
	if len(i.Title) > MaxTitleLength {
		return errors.New("title cannot exceed 200 characters")
	}
	if len(i.Description) > MaxDescriptionLength {
		return errors.New("description cannot exceed 2000 characters")
	}
	if i.OrderIndex < 0 {
		return errors.New("order index cannot be negative")
	}
	return nil
}

func isHTTPURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
