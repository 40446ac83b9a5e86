package calendar

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Defaults applied when building an event.
const (
	DefaultTitle    = "Book Club Meet-up"
	DefaultDuration = 3 * time.Hour
	ProductID       = "-//Triple A Book Club//Meet-ups//EN"
	UIDDomain       = "tripleabookclub.com"
	ContentType     = "text/calendar; charset=utf-8"
)

// icsTimeLayout is the UTC basic format, YYYYMMDDTHHMMSSZ.
const icsTimeLayout = "20060102T150405Z"

// Domain errors
var (
	ErrMissingStart = errors.New("start date is required")
	ErrInvalidStart = errors.New("start date is not a valid date")
	ErrInvalidEnd   = errors.New("end date is not a valid date")
	ErrEndBefore    = errors.New("end date cannot be before start date")
)

// acceptedLayouts are tried in order when parsing start/end query values.
var acceptedLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

var nonAlnum = regexp.MustCompile(`(?i)[^a-z0-9]`)

// Event is the data needed to produce a single-event calendar file.
type Event struct {
	Title       string
	Description string
	Venue       string
	Address     string
	Start       time.Time
	End         time.Time // zero means Start + DefaultDuration
}

// ParseTime parses a start or end value. Values without a zone are UTC.
func ParseTime(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range acceptedLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("parse %q: unsupported date format", value)
}

// NewEvent builds an Event from raw query values, applying defaults.
// PRE: none
// POST: returns an Event with Start set and End >= Start, or an error
func NewEvent(title, description, venue, address, start, end string) (Event, error) {
	if strings.TrimSpace(start) == "" {
		return Event{}, ErrMissingStart
	}
	startAt, err := ParseTime(start)
	if err != nil {
		return Event{}, ErrInvalidStart
	}
	e := Event{
		Title:       title,
		Description: description,
		Venue:       venue,
		Address:     address,
		Start:       startAt,
	}
	if strings.TrimSpace(end) != "" {
		endAt, err := ParseTime(end)
		if err != nil {
			return Event{}, ErrInvalidEnd
		}
		if endAt.Before(startAt) {
			return Event{}, ErrEndBefore
		}
		e.End = endAt
	}
	return e, nil
}

// Location joins venue and address; the address alone when no venue.
func (e Event) Location() string {
	if e.Venue != "" {
		return e.Venue + ", " + e.Address
	}
	return e.Address
}

// EndOrDefault returns End, or Start plus DefaultDuration when End is zero.
func (e Event) EndOrDefault() time.Time {
	if e.End.IsZero() {
		return e.Start.Add(DefaultDuration)
	}
	return e.End
}

// TitleOrDefault returns Title, or DefaultTitle when empty.
func (e Event) TitleOrDefault() string {
	if strings.TrimSpace(e.Title) == "" {
		return DefaultTitle
	}
	return e.Title
}

// Filename derives the attachment name from the title.
func (e Event) Filename() string {
	return nonAlnum.ReplaceAllString(e.TitleOrDefault(), "_") + ".ics"
}

// FormatTime renders t as YYYYMMDDTHHMMSSZ in UTC.
func FormatTime(t time.Time) string {
	return t.UTC().Format(icsTimeLayout)
}

// Render produces the VCALENDAR body with a one-hour and a one-day reminder.
// now stamps DTSTAMP and seeds the UID.
// POST: lines are CRLF separated
func (e Event) Render(now time.Time) string {
	lines := []string{
		"BEGIN:VCALENDAR",
		"VERSION:2.0",
		"PRODID:" + ProductID,
		"CALSCALE:GREGORIAN",
		"METHOD:PUBLISH",
		"BEGIN:VEVENT",
		fmt.Sprintf("UID:meetup-%d@%s", now.UnixMilli(), UIDDomain),
		"DTSTAMP:" + FormatTime(now),
		"DTSTART:" + FormatTime(e.Start),
		"DTEND:" + FormatTime(e.EndOrDefault()),
		"SUMMARY:" + escapeText(e.TitleOrDefault()),
		"DESCRIPTION:" + escapeText(e.Description),
		"LOCATION:" + escapeText(e.Location()),
		"BEGIN:VALARM",
		"TRIGGER:-PT1H",
		"ACTION:DISPLAY",
		"DESCRIPTION:Reminder: Book Club Meet-up in 1 hour",
		"END:VALARM",
		"BEGIN:VALARM",
		"TRIGGER:-PT1D",
		"ACTION:DISPLAY",
		"DESCRIPTION:Reminder: Book Club Meet-up tomorrow",
		"END:VALARM",
		"END:VEVENT",
		"END:VCALENDAR",
	}
	return strings.Join(lines, "\r\n")
}

// escapeText escapes a TEXT property value (RFC 5545 section 3.3.11).
func escapeText(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		";", `\;`,
		",", `\,`,
		"\r\n", `\n`,
		"\n", `\n`,
	)
	return r.Replace(s)
}
