package web

import (
	"net/http"

	"go.uber.org/zap"

	"bookclub/internal/adapters/http/middleware"
	suggestionStore "bookclub/internal/adapters/storage/suggestion"
	"bookclub/internal/application/orchestrators"
	"bookclub/internal/application/projections"
	"bookclub/internal/domain/portal"
)

// handleSuggestionBoard lists a period's suggestions by votes. Signed-in
// callers also get their own count and the ids they voted for.
func (s *Server) handleSuggestionBoard(w http.ResponseWriter, r *http.Request) {
	var viewerID string
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		viewerID = sess.ProfileID
	}

	board, err := projections.QueryGetSuggestionBoard(r.Context(), projections.GetSuggestionBoardQuery{
		Month:    queryInt(r, "month"),
		Year:     queryInt(r, "year"),
		Category: r.URL.Query().Get("category"),
		ViewerID: viewerID,
	}, projections.GetSuggestionBoardDeps{
		SuggestionStore: s.stores.Suggestions,
		VoteStore:       s.stores.Votes,
	})
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	views := make([]suggestionView, 0, len(board.Suggestions))
	for _, e := range board.Suggestions {
		views = append(views, newSuggestionView(e))
	}
	voted := board.VotedIDs
	if voted == nil {
		voted = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"suggestions":           views,
		"user_suggestion_count": board.UserSuggestionCount,
		"remaining":             board.Remaining,
		"user_votes":            voted,
	})
}

// handleCreateSuggestion adds a suggestion within the per-period quota.
func (s *Server) handleCreateSuggestion(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Title    string `json:"title"`
		Author   string `json:"author"`
		Synopsis string `json:"synopsis"`
		ImageURL string `json:"image_url"`
		Category string `json:"category"`
		Month    int    `json:"month"`
		Year     int    `json:"year"`
	}
	if err := strictDecode(w, r, &input); err != nil {
		s.fail(w, r, err)
		return
	}

	created, err := orchestrators.ExecuteCreateSuggestion(r.Context(), orchestrators.CreateSuggestionInput{
		UserID:   session(r).ProfileID,
		Title:    input.Title,
		Author:   input.Author,
		Synopsis: input.Synopsis,
		CoverURL: input.ImageURL,
		Category: input.Category,
		Month:    input.Month,
		Year:     input.Year,
	}, orchestrators.CreateSuggestionDeps{
		SuggestionStore: s.stores.Suggestions,
		Clock:           s.orchestratorClock(),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newSuggestionView(suggestionStore.Entry{Suggestion: created}))
}

// handleDeleteSuggestion removes a suggestion for its owner or an admin.
func (s *Server) handleDeleteSuggestion(w http.ResponseWriter, r *http.Request) {
	err := orchestrators.ExecuteDeleteSuggestion(r.Context(), orchestrators.DeleteSuggestionInput{
		Actor: actor(session(r)),
		ID:    r.URL.Query().Get("id"),
	}, orchestrators.DeleteSuggestionDeps{SuggestionStore: s.stores.Suggestions})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleCastVote records a vote and returns the count from the same
// transaction.
func (s *Server) handleCastVote(w http.ResponseWriter, r *http.Request) {
	var input struct {
		SuggestionID string `json:"suggestion_id"`
	}
	if err := strictDecode(w, r, &input); err != nil {
		s.fail(w, r, err)
		return
	}

	tally, err := orchestrators.ExecuteCastVote(r.Context(), orchestrators.CastVoteInput{
		UserID:       session(r).ProfileID,
		SuggestionID: input.SuggestionID,
	}, s.voteDeps())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "vote_count": tally.VoteCount})
}

// handleRetractVote removes the caller's vote for ?suggestion_id=.
func (s *Server) handleRetractVote(w http.ResponseWriter, r *http.Request) {
	tally, err := orchestrators.ExecuteRetractVote(r.Context(), orchestrators.CastVoteInput{
		UserID:       session(r).ProfileID,
		SuggestionID: r.URL.Query().Get("suggestion_id"),
	}, s.voteDeps())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "vote_count": tally.VoteCount})
}

func (s *Server) voteDeps() orchestrators.CastVoteDeps {
	return orchestrators.CastVoteDeps{
		VoteStore: s.stores.Votes,
		Clock:     s.orchestratorClock(),
	}
}

// handleGetPortalStatus returns one period's flags, or every category of a
// month when ?category= is absent. A period without a row is null.
func (s *Server) handleGetPortalStatus(w http.ResponseWriter, r *http.Request) {
	month, year := queryInt(r, "month"), queryInt(r, "year")
	category := r.URL.Query().Get("category")

	if category == "" {
		statuses, err := s.stores.Portal.List(r.Context(), month, year)
		if err != nil {
			s.internalError(w, r, err)
			return
		}
		views := make([]portalView, 0, len(statuses))
		for _, st := range statuses {
			views = append(views, newPortalView(st))
		}
		writeJSON(w, http.StatusOK, map[string]any{"statuses": views})
		return
	}

	st, err := s.stores.Portal.Get(r.Context(), month, year, category)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if st.ID == "" {
		writeJSON(w, http.StatusOK, map[string]any{"status": nil})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": newPortalView(st)})
}

// handleUpsertPortalStatus opens or closes suggestions and voting for a period.
func (s *Server) handleUpsertPortalStatus(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Month           int    `json:"month"`
		Year            int    `json:"year"`
		Category        string `json:"category"`
		SuggestionsOpen bool   `json:"suggestions_open"`
		VotingOpen      bool   `json:"voting_open"`
	}
	if err := strictDecode(w, r, &input); err != nil {
		s.fail(w, r, err)
		return
	}

	st := portal.Status{
		ID:              generateID(),
		Month:           input.Month,
		Year:            input.Year,
		Category:        input.Category,
		SuggestionsOpen: input.SuggestionsOpen,
		VotingOpen:      input.VotingOpen,
		UpdatedAt:       s.now(),
	}
	if err := st.Validate(); err != nil {
		invalid(w, err)
		return
	}
	saved, err := s.stores.Portal.Upsert(r.Context(), st)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.log.Info("audit_event", zap.String("event", "portal_status_updated"),
		zap.Int("month", saved.Month), zap.Int("year", saved.Year), zap.String("category", saved.Category),
		zap.Bool("suggestions_open", saved.SuggestionsOpen), zap.Bool("voting_open", saved.VotingOpen),
		zap.String("actor_id", session(r).ProfileID))
	writeJSON(w, http.StatusOK, map[string]any{"status": newPortalView(saved)})
}
