package meetup

import (
	"errors"
	"strings"
	"time"

	"bookclub/internal/domain/period"
)

// DefaultCity is used when a meetup is saved without a city.
const DefaultCity = "Lagos"

// Max length constants.
const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 5000
	MaxVenueLength       = 200
	MaxAddressLength     = 300
)

// Domain errors
var (
	ErrNotFound        = errors.New("meetup not found")
	ErrEmptyTitle      = errors.New("title is required")
	ErrEmptyVenue      = errors.New("venue name is required")
	ErrEmptyAddress    = errors.New("address is required")
	ErrMissingDate     = errors.New("event date is required")
	ErrEndBeforeStart  = errors.New("end time cannot be before the event date")
	ErrInvalidLatitude = errors.New("latitude must be between -90 and 90")
	ErrInvalidLong     = errors.New("longitude must be between -180 and 180")
)

// Meetup is a scheduled club gathering.
// INVARIANT: EndTime is zero or not before EventDate.
type Meetup struct {
	ID            string
	Title         string
	Description   string // markdown
	VenueName     string
	Address       string
	City          string
	Latitude      *float64
	Longitude     *float64
	GoogleMapsURL string
	EventDate     time.Time
	EndTime       time.Time // zero when open-ended
	Month         int
	Year          int
	ImageURL      string
	IsPublished   bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Normalize fills derived defaults: city, and month/year from the event date.
// POST: City non-empty; Month and Year set when EventDate is set
func (m *Meetup) Normalize() {
	m.Title = strings.TrimSpace(m.Title)
	m.VenueName = strings.TrimSpace(m.VenueName)
	m.Address = strings.TrimSpace(m.Address)
	if strings.TrimSpace(m.City) == "" {
		m.City = DefaultCity
	}
	if !m.EventDate.IsZero() && (m.Month == 0 || m.Year == 0) {
		m.Month, m.Year = period.Of(m.EventDate)
	}
}

// Validate checks if the Meetup has valid data.
// PRE: Normalize has been called
// POST: Returns error if validation fails, nil otherwise
func (m *Meetup) Validate() error {
	if m.Title == "" {
		return ErrEmptyTitle
	}
	if len(m.Title) > MaxTitleLength {
		return errors.New("title cannot exceed 200 characters")
	}
	if m.VenueName == "" {
		return ErrEmptyVenue
	}
	if len(m.VenueName) > MaxVenueLength {
		return errors.New("venue name cannot exceed 200 characters")
	}
	if m.Address == "" {
		return ErrEmptyAddress
	}
	if len(m.Address) > MaxAddressLength {
		return errors.New("address cannot exceed 300 characters")
	}
	if len(m.Description) > MaxDescriptionLength {
		return errors.New("description cannot exceed 5000 characters")
	}
	if m.EventDate.IsZero() {
		return ErrMissingDate
	}
	if !m.EndTime.IsZero() && m.EndTime.Before(m.EventDate) {
		return ErrEndBeforeStart
	}
	if m.Latitude != nil && (*m.Latitude < -90 || *m.Latitude > 90) {
		return ErrInvalidLatitude
	}
	if m.Longitude != nil && (*m.Longitude < -180 || *m.Longitude > 180) {
		return ErrInvalidLong
	}
	if err := period.ValidateMonth(m.Month); err != nil {
		return err
	}
	return period.ValidateYear(m.Year)
}

// IsUpcoming reports whether the meetup has not finished at now.
func (m *Meetup) IsUpcoming(now time.Time) bool {
	end := m.EndTime
	if end.IsZero() {
		end = m.EventDate
	}
	return !end.Before(now)
}
