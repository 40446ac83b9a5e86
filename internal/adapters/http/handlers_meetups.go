package web

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"bookclub/internal/adapters/http/middleware"
	"bookclub/internal/application/htmlsanitize"
	"bookclub/internal/application/projections"
	"bookclub/internal/domain/calendar"
	"bookclub/internal/domain/meetup"
)

var (
	errInvalidEventDate = errors.New("event date is not a valid date")
	errInvalidEndTime   = errors.New("end time is not a valid date")
)

type meetupInput struct {
	ID            string   `json:"id"`
	Title         *string  `json:"title"`
	Description   *string  `json:"description"`
	VenueName     *string  `json:"venue_name"`
	Address       *string  `json:"address"`
	City          *string  `json:"city"`
	Latitude      *float64 `json:"latitude"`
	Longitude     *float64 `json:"longitude"`
	GoogleMapsURL *string  `json:"google_maps_url"`
	EventDate     *string  `json:"event_date"`
	EndTime       *string  `json:"end_time"`
	EventTime     string   `json:"event_time"` // form-only; event_date already carries the time
	Month         *int     `json:"month"`
	Year          *int     `json:"year"`
	ImageURL      *string  `json:"image_url"`
	IsPublished   *bool    `json:"is_published"`
}

// apply copies the present fields onto m. Dates accept the calendar formats;
// an empty end_time clears it.
func (in meetupInput) apply(m *meetup.Meetup) error {
	if in.EventDate != nil {
		if strings.TrimSpace(*in.EventDate) == "" {
			return meetup.ErrMissingDate
		}
		t, err := calendar.ParseTime(*in.EventDate)
		if err != nil {
			return errInvalidEventDate
		}
		if !t.Equal(m.EventDate) && in.Month == nil && in.Year == nil {
			m.Month, m.Year = 0, 0
		}
		m.EventDate = t
	}
	if in.EndTime != nil {
		if strings.TrimSpace(*in.EndTime) == "" {
			m.EndTime = time.Time{}
		} else {
			t, err := calendar.ParseTime(*in.EndTime)
			if err != nil {
				return errInvalidEndTime
			}
			m.EndTime = t
		}
	}
	if in.Title != nil {
		m.Title = htmlsanitize.PlainText(*in.Title)
	}
	if in.Description != nil {
		m.Description = strings.TrimSpace(*in.Description)
	}
	if in.VenueName != nil {
		m.VenueName = htmlsanitize.PlainText(*in.VenueName)
	}
	if in.Address != nil {
		m.Address = htmlsanitize.PlainText(*in.Address)
	}
	if in.City != nil {
		m.City = htmlsanitize.PlainText(*in.City)
	}
	if in.Latitude != nil {
		m.Latitude = in.Latitude
	}
	if in.Longitude != nil {
		m.Longitude = in.Longitude
	}
	if in.GoogleMapsURL != nil {
		m.GoogleMapsURL = strings.TrimSpace(*in.GoogleMapsURL)
	}
	if in.Month != nil {
		m.Month = *in.Month
	}
	if in.Year != nil {
		m.Year = *in.Year
	}
	if in.ImageURL != nil {
		m.ImageURL = strings.TrimSpace(*in.ImageURL)
	}
	if in.IsPublished != nil {
		m.IsPublished = *in.IsPublished
	}
	m.Normalize()
	return m.Validate()
}

func (s *Server) meetupDeps() projections.GetMeetupsDeps {
	return projections.GetMeetupsDeps{MeetupStore: s.stores.Meetups}
}

// handleListMeetups returns meetups newest first with rendered descriptions.
// Drafts are visible to admins only.
func (s *Server) handleListMeetups(w http.ResponseWriter, r *http.Request) {
	views, err := projections.QueryGetMeetups(r.Context(), projections.GetMeetupsQuery{
		IncludeDrafts: middleware.IsAdmin(r.Context()),
	}, s.meetupDeps())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newMeetupViews(views))
}

type yearGroupView struct {
	Year    int          `json:"year"`
	Meetups []meetupView `json:"meetups"`
}

// handleMeetupTimeline splits published meetups into upcoming and past by year.
func (s *Server) handleMeetupTimeline(w http.ResponseWriter, r *http.Request) {
	timeline, err := projections.QueryGetMeetupTimeline(r.Context(), s.now(), s.meetupDeps())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	past := make([]yearGroupView, 0, len(timeline.Past))
	for _, g := range timeline.Past {
		past = append(past, yearGroupView{Year: g.Year, Meetups: newMeetupViews(g.Meetups)})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"upcoming": newMeetupViews(timeline.Upcoming),
		"past":     past,
	})
}

func (s *Server) handleCreateMeetup(w http.ResponseWriter, r *http.Request) {
	var input meetupInput
	if err := strictDecode(w, r, &input); err != nil {
		s.fail(w, r, err)
		return
	}
	now := s.now()
	m := meetup.Meetup{ID: generateID(), CreatedAt: now, UpdatedAt: now}
	if err := input.apply(&m); err != nil {
		invalid(w, err)
		return
	}
	if err := s.stores.Meetups.Save(r.Context(), m); err != nil {
		s.internalError(w, r, err)
		return
	}
	s.log.Info("audit_event", zap.String("event", "meetup_created"), zap.String("meetup_id", m.ID),
		zap.String("actor_id", session(r).ProfileID))
	s.writeMeetup(w, r, http.StatusCreated, m)
}

func (s *Server) handleUpdateMeetup(w http.ResponseWriter, r *http.Request) {
	var input meetupInput
	if err := strictDecode(w, r, &input); err != nil {
		s.fail(w, r, err)
		return
	}
	if input.ID == "" {
		writeError(w, http.StatusBadRequest, "Meetup ID is required")
		return
	}
	m, err := s.stores.Meetups.GetByID(r.Context(), input.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if err := input.apply(&m); err != nil {
		invalid(w, err)
		return
	}
	m.UpdatedAt = s.now()
	if err := s.stores.Meetups.Save(r.Context(), m); err != nil {
		s.internalError(w, r, err)
		return
	}
	s.writeMeetup(w, r, http.StatusOK, m)
}

func (s *Server) handleDeleteMeetup(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Meetup ID is required")
		return
	}
	if err := s.stores.Meetups.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.log.Info("audit_event", zap.String("event", "meetup_deleted"), zap.String("meetup_id", id),
		zap.String("actor_id", session(r).ProfileID))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) writeMeetup(w http.ResponseWriter, r *http.Request, status int, m meetup.Meetup) {
	html, err := htmlsanitize.Markdown(m.Description)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, status, newMeetupView(projections.MeetupView{Meetup: m, DescriptionHTML: html}))
}

// handleCalendar builds a single-event calendar file from query values.
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	event, err := calendar.NewEvent(q.Get("title"), q.Get("description"), q.Get("venue"), q.Get("address"),
		q.Get("start"), q.Get("end"))
	if err != nil {
		invalid(w, err)
		return
	}
	s.writeCalendar(w, event)
}

// handleMeetupCalendar serves the calendar file of a stored meetup. Drafts
// are only available to admins.
func (s *Server) handleMeetupCalendar(w http.ResponseWriter, r *http.Request) {
	m, err := s.stores.Meetups.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if !m.IsPublished && !middleware.IsAdmin(r.Context()) {
		s.fail(w, r, meetup.ErrNotFound)
		return
	}
	s.writeCalendar(w, calendar.Event{
		Title:       m.Title,
		Description: m.Description,
		Venue:       m.VenueName,
		Address:     m.Address,
		Start:       m.EventDate,
		End:         m.EndTime,
	})
}

func (s *Server) writeCalendar(w http.ResponseWriter, event calendar.Event) {
	w.Header().Set("Content-Type", calendar.ContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+event.Filename()+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(event.Render(s.now())))
}
