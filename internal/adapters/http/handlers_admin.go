package web

import (
	"net/http"

	"bookclub/internal/application/listutil"
	"bookclub/internal/application/orchestrators"
	"bookclub/internal/application/projections"
)

// handleAdminStats returns the dashboard counts.
func (s *Server) handleAdminStats(w http.ResponseWriter, r *http.Request) {
	stats, err := projections.QueryGetAdminStats(r.Context(), projections.GetAdminStatsDeps{
		BookStore:       s.stores.Books,
		ProfileStore:    s.stores.Profiles,
		SuggestionStore: s.stores.Suggestions,
		GalleryStore:    s.stores.Gallery,
	})
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleListUsers lists profiles newest first, optionally paged with
// ?page=&per_page= and filtered by ?role=.
func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetUserList(r.Context(), projections.GetUserListQuery{
		PageParams: listutil.ParsePageParams(r.URL.Query()),
		Role:       r.URL.Query().Get("role"),
	}, projections.GetUserListDeps{ProfileStore: s.stores.Profiles})
	if err != nil {
		s.internalError(w, r, err)
		return
	}

	users := make([]profileView, 0, len(result.Users))
	for _, p := range result.Users {
		users = append(users, newProfileView(p))
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"users":     users,
		"page_info": result.PageInfo,
	})
}

// handleCreateUser creates a profile, inviting it by email when no password is given.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
	}
	if err := strictDecode(w, r, &input); err != nil {
		s.fail(w, r, err)
		return
	}

	p, err := orchestrators.ExecuteCreateUser(r.Context(), orchestrators.CreateUserInput{
		Email:    input.Email,
		FullName: input.FullName,
		Password: input.Password,
	}, orchestrators.CreateUserDeps{
		ProfileStore: s.stores.Profiles,
		Mailer:       s.mailer,
		Clock:        s.orchestratorClock(),
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "User created successfully",
		"user": map[string]string{
			"id":        p.ID,
			"email":     p.Email,
			"full_name": p.FullName,
		},
	})
}

// handleUpdateUser changes name, role or active flag.
func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ID       string  `json:"id"`
		FullName *string `json:"full_name"`
		Role     *string `json:"role"`
		IsActive *bool   `json:"is_active"`
	}
	if err := strictDecode(w, r, &input); err != nil {
		s.fail(w, r, err)
		return
	}

	p, err := orchestrators.ExecuteUpdateUser(r.Context(), orchestrators.UpdateUserInput{
		Actor:    actor(session(r)),
		ID:       input.ID,
		FullName: input.FullName,
		Role:     input.Role,
		IsActive: input.IsActive,
	}, s.updateUserDeps())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "User updated successfully",
		"user":    newProfileView(p),
	})
}

// handleDeleteUser removes a profile. Routed for super admins only.
func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	err := orchestrators.ExecuteDeleteUser(r.Context(), orchestrators.DeleteUserInput{
		Actor: actor(session(r)),
		ID:    r.URL.Query().Get("id"),
	}, s.updateUserDeps())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) updateUserDeps() orchestrators.UpdateUserDeps {
	return orchestrators.UpdateUserDeps{
		ProfileStore: s.stores.Profiles,
		Clock:        s.orchestratorClock(),
	}
}
