package web

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	galleryStore "bookclub/internal/adapters/storage/gallery"
	"bookclub/internal/application/htmlsanitize"
	"bookclub/internal/domain/gallery"
)

type galleryInput struct {
	ID           string  `json:"id"`
	Type         *string `json:"type"`
	URL          *string `json:"url"`
	ThumbnailURL *string `json:"thumbnail_url"`
	Title        *string `json:"title"`
	Description  *string `json:"description"`
	Month        *int    `json:"month"`
	Year         *int    `json:"year"`
	OrderIndex   *int    `json:"order_index"`
}

func (in galleryInput) apply(i *gallery.Item) {
	if in.Type != nil {
		i.Type = strings.TrimSpace(*in.Type)
	}
	if in.URL != nil {
		i.URL = strings.TrimSpace(*in.URL)
	}
	if in.ThumbnailURL != nil {
		i.ThumbnailURL = strings.TrimSpace(*in.ThumbnailURL)
	}
	if in.Title != nil {
		i.Title = htmlsanitize.PlainText(*in.Title)
	}
	if in.Description != nil {
		i.Description = htmlsanitize.PlainText(*in.Description)
	}
	if in.Month != nil {
		i.Month = *in.Month
	}
	if in.Year != nil {
		i.Year = *in.Year
	}
	if in.OrderIndex != nil {
		i.OrderIndex = *in.OrderIndex
	}
}

// handleListGallery returns items by order_index, filtered by ?month=&year=&type=.
func (s *Server) handleListGallery(w http.ResponseWriter, r *http.Request) {
	items, err := s.stores.Gallery.List(r.Context(), galleryStore.ListFilter{
		Month: queryInt(r, "month"),
		Year:  queryInt(r, "year"),
		Type:  r.URL.Query().Get("type"),
	})
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	views := make([]galleryView, 0, len(items))
	for _, i := range items {
		views = append(views, newGalleryView(i))
	}
	writeJSON(w, http.StatusOK, views)
}

// handleCreateGalleryItem appends an item after the current last one.
func (s *Server) handleCreateGalleryItem(w http.ResponseWriter, r *http.Request) {
	var input galleryInput
	if err := strictDecode(w, r, &input); err != nil {
		s.fail(w, r, err)
		return
	}
	input.OrderIndex = nil

	item := gallery.Item{
		ID:        generateID(),
		CreatedBy: session(r).ProfileID,
		CreatedAt: s.now(),
	}
	input.apply(&item)
	if err := item.Validate(); err != nil {
		invalid(w, err)
		return
	}
	created, err := s.stores.Gallery.CreateAtEnd(r.Context(), item)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.log.Info("audit_event", zap.String("event", "gallery_item_created"), zap.String("item_id", created.ID),
		zap.String("actor_id", created.CreatedBy))
	writeJSON(w, http.StatusCreated, map[string]any{"success": true, "item": newGalleryView(created)})
}

func (s *Server) handleUpdateGalleryItem(w http.ResponseWriter, r *http.Request) {
	var input galleryInput
	if err := strictDecode(w, r, &input); err != nil {
		s.fail(w, r, err)
		return
	}
	if input.ID == "" {
		writeError(w, http.StatusBadRequest, "Gallery item ID is required")
		return
	}
	item, err := s.stores.Gallery.GetByID(r.Context(), input.ID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	input.apply(&item)
	if err := item.Validate(); err != nil {
		invalid(w, err)
		return
	}
	if err := s.stores.Gallery.Save(r.Context(), item); err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "item": newGalleryView(item)})
}

func (s *Server) handleDeleteGalleryItem(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Gallery item ID is required")
		return
	}
	if err := s.stores.Gallery.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.log.Info("audit_event", zap.String("event", "gallery_item_deleted"), zap.String("item_id", id),
		zap.String("actor_id", session(r).ProfileID))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}
