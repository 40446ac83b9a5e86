package orchestrators

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"bookclub/internal/domain/member"
	"bookclub/internal/domain/profile"
)

// ProfileStoreForLink defines the profile lookup needed by LinkMember.
type ProfileStoreForLink interface {
	GetByID(ctx context.Context, id string) (profile.Profile, error)
}

// MemberStoreForLink defines the member operations needed by LinkMember.
type MemberStoreForLink interface {
	GetByProfileID(ctx context.Context, profileID string) (member.Member, error)
	CreateAtEnd(ctx context.Context, m member.Member) (member.Member, error)
	Link(ctx context.Context, memberID, profileID string, now time.Time) (member.Member, error)
}

// LinkMemberInput carries input for the orchestrator. An empty MemberID
// creates a new member for the profile.
type LinkMemberInput struct {
	Actor     Actor
	ProfileID string
	MemberID  string
}

// LinkMemberResult reports the linked member and whether it was created.
type LinkMemberResult struct {
	Member  member.Member
	Created bool
}

// LinkMemberDeps holds dependencies for LinkMember.
type LinkMemberDeps struct {
	ProfileStore ProfileStoreForLink
	MemberStore  MemberStoreForLink
	Clock        Clock
}

var (
	ErrAdminOnlyLink     = errors.New("only admins can link profiles to members")
	ErrProfileIDRequired = errors.New("profile id is required")
)

// ExecuteLinkMember associates a profile with a roster member.
// PRE: Actor is an admin
// POST: Exactly one member has ProfileID == input.ProfileID
// INVARIANT: A member links to at most one profile and a profile to at most one member
func ExecuteLinkMember(ctx context.Context, input LinkMemberInput, deps LinkMemberDeps) (LinkMemberResult, error) {
	if !isAdminRole(input.Actor.Role) {
		return LinkMemberResult{}, ErrAdminOnlyLink
	}
	if input.ProfileID == "" {
		return LinkMemberResult{}, ErrProfileIDRequired
	}

	p, err := deps.ProfileStore.GetByID(ctx, input.ProfileID)
	if err != nil {
		return LinkMemberResult{}, err
	}

	now := deps.Clock.now()
	if input.MemberID != "" {
		m, err := deps.MemberStore.Link(ctx, input.MemberID, p.ID, now)
		if err != nil {
			return LinkMemberResult{}, err
		}
		zap.L().Info("audit_event", zap.String("event", "member_linked"),
			zap.String("member_id", m.ID), zap.String("profile_id", p.ID), zap.String("actor_id", input.Actor.ID))
		return LinkMemberResult{Member: m}, nil
	}

	if _, err := deps.MemberStore.GetByProfileID(ctx, p.ID); err == nil {
		return LinkMemberResult{}, member.ErrProfileHasMember
	} else if !errors.Is(err, member.ErrNotFound) {
		return LinkMemberResult{}, err
	}

	m := member.Member{
		ID:          generateID(),
		ProfileID:   p.ID,
		Name:        member.NameForProfile(p.FullName, p.Email),
		Role:        member.DefaultRole,
		SocialLinks: member.SocialLinks{},
		IsVisible:   true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := m.Validate(); err != nil {
		return LinkMemberResult{}, err
	}
	created, err := deps.MemberStore.CreateAtEnd(ctx, m)
	if err != nil {
		return LinkMemberResult{}, err
	}
	zap.L().Info("audit_event", zap.String("event", "member_created_for_profile"),
		zap.String("member_id", created.ID), zap.String("profile_id", p.ID), zap.Int("order_index", created.OrderIndex))
	return LinkMemberResult{Member: created, Created: true}, nil
}
