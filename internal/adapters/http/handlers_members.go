package web

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"bookclub/internal/adapters/http/middleware"
	"bookclub/internal/application/htmlsanitize"
	"bookclub/internal/application/orchestrators"
	"bookclub/internal/application/projections"
	"bookclub/internal/domain/member"
	"bookclub/internal/domain/profile"
)

// memberInput is the body of member create and update requests. Absent
// fields are left unchanged on update. The profile page sends memberId, the
// admin roster sends id.
type memberInput struct {
	ID          string              `json:"id"`
	MemberID    string              `json:"memberId"`
	Name        *string             `json:"name"`
	Role        *string             `json:"role"`
	Bio         *string             `json:"bio"`
	ImageURL    *string             `json:"image_url"`
	SocialLinks *member.SocialLinks `json:"social_links"`
	IsVisible   *bool               `json:"is_visible"`
	OrderIndex  *int                `json:"order_index"`
}

// handleListMembers returns the roster. Admins see hidden members and may
// ask for ?unlinked=true.
func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	admin := middleware.IsAdmin(r.Context())
	unlinked := queryBool(r, "unlinked")
	if unlinked && !admin {
		if _, ok := middleware.GetSessionFromContext(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		writeError(w, http.StatusForbidden, "Forbidden")
		return
	}

	members, err := projections.QueryGetMemberRoster(r.Context(), projections.GetMemberRosterQuery{
		IncludeHidden: admin,
		UnlinkedOnly:  unlinked,
	}, projections.GetMemberRosterDeps{MemberStore: s.stores.Members})
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newMemberViews(members))
}

// handleCreateMember adds a roster entry at the end unless order_index is given.
func (s *Server) handleCreateMember(w http.ResponseWriter, r *http.Request) {
	var input memberInput
	if err := strictDecode(w, r, &input); err != nil {
		s.fail(w, r, err)
		return
	}
	if input.Name == nil || strings.TrimSpace(*input.Name) == "" {
		s.fail(w, r, member.ErrEmptyName)
		return
	}

	now := s.now()
	m := member.Member{
		ID:          generateID(),
		Name:        htmlsanitize.PlainText(*input.Name),
		Role:        member.DefaultRole,
		SocialLinks: member.SocialLinks{},
		IsVisible:   true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if input.Role != nil {
		m.Role = htmlsanitize.PlainText(*input.Role)
	}
	if input.Bio != nil {
		m.Bio = htmlsanitize.PlainText(*input.Bio)
	}
	if input.ImageURL != nil {
		m.ImageURL = strings.TrimSpace(*input.ImageURL)
	}
	if input.SocialLinks != nil {
		m.SocialLinks = *input.SocialLinks
	}
	if input.IsVisible != nil {
		m.IsVisible = *input.IsVisible
	}
	if input.OrderIndex != nil {
		m.OrderIndex = *input.OrderIndex
	}
	if err := m.Validate(); err != nil {
		invalid(w, err)
		return
	}

	var err error
	if input.OrderIndex != nil {
		err = s.stores.Members.Create(r.Context(), m)
	} else {
		m, err = s.stores.Members.CreateAtEnd(r.Context(), m)
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.log.Info("audit_event", zap.String("event", "member_created"), zap.String("member_id", m.ID),
		zap.String("actor_id", session(r).ProfileID))
	writeJSON(w, http.StatusCreated, newMemberView(m))
}

// handleUpdateMember applies a partial update as an admin.
func (s *Server) handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	var input memberInput
	if err := strictDecode(w, r, &input); err != nil {
		s.fail(w, r, err)
		return
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		s.fail(w, r, member.ErrEmptyName)
		return
	}
	m, err := s.updateMember(r, input)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newMemberView(m))
}

// handleDeleteMember removes a roster entry by ?id=.
func (s *Server) handleDeleteMember(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		s.fail(w, r, orchestrators.ErrMemberIDRequired)
		return
	}
	if err := s.stores.Members.Delete(r.Context(), id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.log.Info("audit_event", zap.String("event", "member_deleted"), zap.String("member_id", id),
		zap.String("actor_id", session(r).ProfileID))
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// handleGetMemberProfile returns the caller's linked member. Admins may pass
// ?memberId= or ?profileId= to look up anyone.
func (s *Server) handleGetMemberProfile(w http.ResponseWriter, r *http.Request) {
	sess := session(r)
	q := r.URL.Query()

	var (
		m   member.Member
		err error
	)
	switch {
	case sess.IsAdmin() && q.Get("memberId") != "":
		m, err = s.stores.Members.GetByID(r.Context(), q.Get("memberId"))
	case sess.IsAdmin() && q.Get("profileId") != "":
		m, err = s.stores.Members.GetByProfileID(r.Context(), q.Get("profileId"))
	default:
		m, err = s.stores.Members.GetByProfileID(r.Context(), sess.ProfileID)
	}
	if errors.Is(err, member.ErrNotFound) {
		writeJSON(w, http.StatusOK, map[string]any{"member": nil})
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"member": newMemberView(m)})
}

// handleUpdateMemberProfile lets an owner edit their member; admins may also
// change role and visibility.
func (s *Server) handleUpdateMemberProfile(w http.ResponseWriter, r *http.Request) {
	var input memberInput
	if err := strictDecode(w, r, &input); err != nil {
		s.fail(w, r, err)
		return
	}
	if input.Name != nil && strings.TrimSpace(*input.Name) == "" {
		s.fail(w, r, member.ErrEmptyName)
		return
	}
	m, err := s.updateMember(r, input)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"member":  newMemberView(m),
		"message": "Profile updated successfully",
	})
}

func (in memberInput) memberID() string {
	if in.ID != "" {
		return in.ID
	}
	return in.MemberID
}

func (s *Server) updateMember(r *http.Request, input memberInput) (member.Member, error) {
	return orchestrators.ExecuteUpdateMemberProfile(r.Context(), orchestrators.UpdateMemberProfileInput{
		Actor:       actor(session(r)),
		MemberID:    input.memberID(),
		Name:        input.Name,
		Bio:         input.Bio,
		ImageURL:    input.ImageURL,
		SocialLinks: input.SocialLinks,
		Role:        input.Role,
		IsVisible:   input.IsVisible,
		OrderIndex:  input.OrderIndex,
	}, orchestrators.UpdateMemberProfileDeps{
		MemberStore: s.stores.Members,
		Clock:       s.orchestratorClock(),
	})
}

// handleLinkMember links a profile to an existing member, or creates one
// named after the profile when no memberId is given.
func (s *Server) handleLinkMember(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ProfileID string `json:"profileId"`
		MemberID  string `json:"memberId"`
	}
	if err := strictDecode(w, r, &input); err != nil {
		s.fail(w, r, err)
		return
	}

	result, err := orchestrators.ExecuteLinkMember(r.Context(), orchestrators.LinkMemberInput{
		Actor:     actor(session(r)),
		ProfileID: input.ProfileID,
		MemberID:  input.MemberID,
	}, orchestrators.LinkMemberDeps{
		ProfileStore: s.stores.Profiles,
		MemberStore:  s.stores.Members,
		Clock:        s.orchestratorClock(),
	})
	if err != nil {
		s.fail(w, r, err, errorMapping{profile.ErrNotFound, http.StatusNotFound, "Profile not found"})
		return
	}

	msg := "Member linked to profile successfully"
	status := http.StatusOK
	if result.Created {
		msg = "Member created and linked successfully"
		status = http.StatusCreated
	}
	writeJSON(w, status, map[string]any{
		"member":  newMemberView(result.Member),
		"message": msg,
	})
}
