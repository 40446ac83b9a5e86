package web

import (
	"time"

	"bookclub/internal/adapters/http/middleware"
	suggestionStore "bookclub/internal/adapters/storage/suggestion"
	"bookclub/internal/application/projections"
	"bookclub/internal/domain/book"
	"bookclub/internal/domain/gallery"
	"bookclub/internal/domain/member"
	"bookclub/internal/domain/portal"
	"bookclub/internal/domain/profile"
)

// JSON shapes returned by the API. Password hashes and reset tokens have no
// field here and never leave the server.

type sessionUserView struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	Image string `json:"image"`
}

func newSessionUserView(s middleware.Session) sessionUserView {
	return sessionUserView{ID: s.ProfileID, Email: s.Email, Name: s.Name, Role: s.Role, Image: s.Image}
}

type profileView struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	AvatarURL string    `json:"avatar_url"`
	Role      string    `json:"role"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newProfileView(p profile.Profile) profileView {
	return profileView{
		ID:        p.ID,
		Email:     p.Email,
		FullName:  p.FullName,
		AvatarURL: p.AvatarURL,
		Role:      p.Role,
		IsActive:  p.IsActive,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

type memberView struct {
	ID          string             `json:"id"`
	ProfileID   *string            `json:"profile_id"`
	Name        string             `json:"name"`
	Role        string             `json:"role"`
	Bio         string             `json:"bio"`
	ImageURL    string             `json:"image_url"`
	SocialLinks member.SocialLinks `json:"social_links"`
	IsVisible   bool               `json:"is_visible"`
	OrderIndex  int                `json:"order_index"`
	CreatedAt   time.Time          `json:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at"`
}

func newMemberView(m member.Member) memberView {
	v := memberView{
		ID:          m.ID,
		Name:        m.Name,
		Role:        m.Role,
		Bio:         m.Bio,
		ImageURL:    m.ImageURL,
		SocialLinks: m.SocialLinks,
		IsVisible:   m.IsVisible,
		OrderIndex:  m.OrderIndex,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
	if m.ProfileID != "" {
		id := m.ProfileID
		v.ProfileID = &id
	}
	if v.SocialLinks == nil {
		v.SocialLinks = member.SocialLinks{}
	}
	return v
}

func newMemberViews(members []member.Member) []memberView {
	views := make([]memberView, 0, len(members))
	for _, m := range members {
		views = append(views, newMemberView(m))
	}
	return views
}

type bookView struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Author     string    `json:"author"`
	Synopsis   string    `json:"synopsis"`
	ImageURL   string    `json:"image_url"`
	Category   string    `json:"category"`
	Month      int       `json:"month"`
	Year       int       `json:"year"`
	IsSelected bool      `json:"is_selected"`
	CreatedAt  time.Time `json:"created_at"`
}

func newBookView(b book.Book) bookView {
	return bookView{
		ID:         b.ID,
		Title:      b.Title,
		Author:     b.Author,
		Synopsis:   b.Synopsis,
		ImageURL:   b.CoverURL,
		Category:   b.Category,
		Month:      b.Month,
		Year:       b.Year,
		IsSelected: b.IsSelected,
		CreatedAt:  b.CreatedAt,
	}
}

type suggestionView struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Title         string    `json:"title"`
	Author        string    `json:"author"`
	Synopsis      string    `json:"synopsis"`
	ImageURL      string    `json:"image_url"`
	Category      string    `json:"category"`
	Month         int       `json:"month"`
	Year          int       `json:"year"`
	VoteCount     int       `json:"vote_count"`
	SubmitterName string    `json:"submitter_name,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

func newSuggestionView(e suggestionStore.Entry) suggestionView {
	return suggestionView{
		ID:            e.ID,
		UserID:        e.UserID,
		Title:         e.Title,
		Author:        e.Author,
		Synopsis:      e.Synopsis,
		ImageURL:      e.CoverURL,
		Category:      e.Category,
		Month:         e.Month,
		Year:          e.Year,
		VoteCount:     e.VoteCount,
		SubmitterName: e.SubmitterName,
		CreatedAt:     e.CreatedAt,
	}
}

type portalView struct {
	ID              string    `json:"id,omitempty"`
	Month           int       `json:"month"`
	Year            int       `json:"year"`
	Category        string    `json:"category"`
	SuggestionsOpen bool      `json:"suggestions_open"`
	VotingOpen      bool      `json:"voting_open"`
	UpdatedAt       time.Time `json:"updated_at,omitzero"`
}

func newPortalView(s portal.Status) portalView {
	return portalView{
		ID:              s.ID,
		Month:           s.Month,
		Year:            s.Year,
		Category:        s.Category,
		SuggestionsOpen: s.SuggestionsOpen,
		VotingOpen:      s.VotingOpen,
		UpdatedAt:       s.UpdatedAt,
	}
}

type galleryView struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	URL          string    `json:"url"`
	ThumbnailURL string    `json:"thumbnail_url"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Month        int       `json:"month"`
	Year         int       `json:"year"`
	OrderIndex   int       `json:"order_index"`
	CreatedBy    string    `json:"created_by,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

func newGalleryView(i gallery.Item) galleryView {
	return galleryView{
		ID:           i.ID,
		Type:         i.Type,
		URL:          i.URL,
		ThumbnailURL: i.ThumbnailURL,
		Title:        i.Title,
		Description:  i.Description,
		Month:        i.Month,
		Year:         i.Year,
		OrderIndex:   i.OrderIndex,
		CreatedBy:    i.CreatedBy,
		CreatedAt:    i.CreatedAt,
	}
}

type meetupView struct {
	ID              string     `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	DescriptionHTML string     `json:"description_html"`
	VenueName       string     `json:"venue_name"`
	Address         string     `json:"address"`
	City            string     `json:"city"`
	Latitude        *float64   `json:"latitude"`
	Longitude       *float64   `json:"longitude"`
	GoogleMapsURL   string     `json:"google_maps_url"`
	EventDate       time.Time  `json:"event_date"`
	EndTime         *time.Time `json:"end_time"`
	Month           int        `json:"month"`
	Year            int        `json:"year"`
	ImageURL        string     `json:"image_url"`
	IsPublished     bool       `json:"is_published"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

func newMeetupView(v projections.MeetupView) meetupView {
	m := v.Meetup
	view := meetupView{
		ID:              m.ID,
		Title:           m.Title,
		Description:     m.Description,
		DescriptionHTML: v.DescriptionHTML,
		VenueName:       m.VenueName,
		Address:         m.Address,
		City:            m.City,
		Latitude:        m.Latitude,
		Longitude:       m.Longitude,
		GoogleMapsURL:   m.GoogleMapsURL,
		EventDate:       m.EventDate,
		Month:           m.Month,
		Year:            m.Year,
		ImageURL:        m.ImageURL,
		IsPublished:     m.IsPublished,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
	if !m.EndTime.IsZero() {
		end := m.EndTime
		view.EndTime = &end
	}
	return view
}

func newMeetupViews(views []projections.MeetupView) []meetupView {
	out := make([]meetupView, 0, len(views))
	for _, v := range views {
		out = append(out, newMeetupView(v))
	}
	return out
}
