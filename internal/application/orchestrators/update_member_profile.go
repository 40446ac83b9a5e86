package orchestrators

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"bookclub/internal/application/htmlsanitize"
	"bookclub/internal/domain/member"
)

// MemberStoreForProfileUpdate defines the store interface needed by UpdateMemberProfile.
type MemberStoreForProfileUpdate interface {
	GetByID(ctx context.Context, id string) (member.Member, error)
	Save(ctx context.Context, m member.Member) error
}

// UpdateMemberProfileInput carries a partial member update. Nil fields are
// left unchanged. Role and IsVisible apply only when the actor is an admin.
type UpdateMemberProfileInput struct {
	Actor       Actor
	MemberID    string
	Name        *string
	Bio         *string
	ImageURL    *string
	SocialLinks *member.SocialLinks
	Role        *string
	IsVisible   *bool
	OrderIndex  *int
}

// UpdateMemberProfileDeps holds dependencies for UpdateMemberProfile.
type UpdateMemberProfileDeps struct {
	MemberStore MemberStoreForProfileUpdate
	Clock       Clock
}

var (
	ErrMemberIDRequired = errors.New("member id is required")
	ErrNotProfileOwner  = errors.New("you can only edit your own profile")
)

// ExecuteUpdateMemberProfile edits a roster entry.
// PRE: Actor is authenticated
// POST: Member updated, or ErrNotProfileOwner for a non-admin editing another member
// INVARIANT: Non-admins never change role, visibility or order
func ExecuteUpdateMemberProfile(ctx context.Context, input UpdateMemberProfileInput, deps UpdateMemberProfileDeps) (member.Member, error) {
	if input.MemberID == "" {
		return member.Member{}, ErrMemberIDRequired
	}
	m, err := deps.MemberStore.GetByID(ctx, input.MemberID)
	if err != nil {
		return member.Member{}, err
	}

	admin := isAdminRole(input.Actor.Role)
	if !admin && !m.IsOwnedBy(input.Actor.ID) {
		return member.Member{}, ErrNotProfileOwner
	}

	if input.Name != nil {
		m.Name = htmlsanitize.PlainText(*input.Name)
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
	if admin {
		if input.Role != nil {
			m.Role = htmlsanitize.PlainText(*input.Role)
		}
		if input.IsVisible != nil {
			m.IsVisible = *input.IsVisible
		}
		if input.OrderIndex != nil {
			m.OrderIndex = *input.OrderIndex
		}
	}

	if err := m.Validate(); err != nil {
		return member.Member{}, err
	}
	m.UpdatedAt = deps.Clock.now()
	if err := deps.MemberStore.Save(ctx, m); err != nil {
		return member.Member{}, err
	}

	zap.L().Info("audit_event", zap.String("event", "member_updated"), zap.String("member_id", m.ID), zap.String("actor_id", input.Actor.ID))
	return m, nil
}
