package web

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"bookclub/internal/adapters/http/middleware"
	bookStore "bookclub/internal/adapters/storage/book"
	"bookclub/internal/application/htmlsanitize"
	"bookclub/internal/domain/book"
)

type bookInput struct {
	ID         string  `json:"id"`
	Title      *string `json:"title"`
	Author     *string `json:"author"`
	Synopsis   *string `json:"synopsis"`
	ImageURL   *string `json:"image_url"`
	Category   *string `json:"category"`
	Month      *int    `json:"month"`
	Year       *int    `json:"year"`
	IsSelected *bool   `json:"is_selected"`
}

// apply copies the present fields onto b.
func (in bookInput) apply(b *book.Book) {
	if in.Title != nil {
		b.Title = htmlsanitize.PlainText(*in.Title)
	}
	if in.Author != nil {
		b.Author = htmlsanitize.PlainText(*in.Author)
	}
	if in.Synopsis != nil {
		b.Synopsis = htmlsanitize.PlainText(*in.Synopsis)
	}
	if in.ImageURL != nil {
		b.CoverURL = strings.TrimSpace(*in.ImageURL)
	}
	if in.Category != nil {
		b.Category = strings.TrimSpace(*in.Category)
	}
	if in.Month != nil {
		b.Month = *in.Month
	}
	if in.Year != nil {
		b.Year = *in.Year
	}
	if in.IsSelected != nil {
		b.IsSelected = *in.IsSelected
	}
}

// handleListBooks returns selected books, newest period first. Admins may
// pass ?all=true to include unselected ones.
func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) {
	filter := bookStore.ListFilter{
		SelectedOnly: !(queryBool(r, "all") && middleware.IsAdmin(r.Context())),
		Category:     r.URL.Query().Get("category"),
		Month:        queryInt(r, "month"),
		Year:         queryInt(r, "year"),
	}
	books, err := s.stores.Books.List(r.Context(), filter)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	views := make([]bookView, 0, len(books))
	for _, b := range books {
		views = append(views, newBookView(b))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var input bookInput
	if err := strictDecode(w, r, &input); err != nil {
		s.fail(w, r, err)
		return
	}
	b := book.Book{ID: generateID(), CreatedAt: s.now()}
	input.apply(&b)
	if err := b.Validate(); err != nil {
		invalid(w, err)
		return
	}
	if err := s.stores.Books.Save(r.Context(), b); err != nil {
		s.internalError(w, r, err)
		return
	}
	s.log.Info("audit_event", zap.String("event", "book_created"), zap.String("book_id", b.ID),
		zap.String("actor_id", session(r).ProfileID))
	writeJSON(w, http.StatusCreated, newBookView(b))
}

func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) {
	var input bookInput
	if err := strictDecode(w, r, &input); err != nil {
		s.fail(w, r, err)
		return
	}
	if input.ID == "" {
		writeError(w, http.StatusBadRequest, "Book ID is required")
		return
	}
	b, err := s.stores.Books.GetByID(r.Context(), input.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	input.apply(&b)
	if err := b.Validate(); err != nil {
		invalid(w, err)
		return
	}
	if err := s.stores.Books.Save(r.Context(), b); err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newBookView(b))
}

func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Book ID is required")
		return
	}
	if err := s.stores.Books.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.log.Info("audit_event", zap.String("event", "book_deleted"), zap.String("book_id", id),
		zap.String("actor_id", session(r).ProfileID))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
