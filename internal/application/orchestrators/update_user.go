package orchestrators

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"bookclub/internal/domain/profile"
)

// ProfileStoreForUpdateUser defines the store interface needed by UpdateUser and DeleteUser.
type ProfileStoreForUpdateUser interface {
	GetByID(ctx context.Context, id string) (profile.Profile, error)
	Save(ctx context.Context, p profile.Profile) error
	Delete(ctx context.Context, id string) error
}

// Actor identifies the session performing an admin operation.
type Actor struct {
	ID   string
	Role string
}

// IsSuperAdmin reports whether the actor holds the super_admin role.
func (a Actor) IsSuperAdmin() bool {
	return a.Role == profile.RoleSuperAdmin
}

// UpdateUserInput carries a partial profile update. Nil fields are left unchanged.
type UpdateUserInput struct {
	Actor    Actor
	ID       string
	FullName *string
	Role     *string
	IsActive *bool
}

// UpdateUserDeps holds dependencies for UpdateUser and DeleteUser.
type UpdateUserDeps struct {
	ProfileStore ProfileStoreForUpdateUser
	Clock        Clock
}

var (
	ErrUserIDRequired   = errors.New("user id is required")
	ErrSuperAdminOnly   = errors.New("only a super admin can perform this action")
	ErrSelfModification = errors.New("you cannot remove your own access")
)

// ExecuteUpdateUser applies an admin edit to a profile.
// PRE: Actor is an admin
// POST: Profile updated, or an error explaining which rule refused it
// INVARIANT: Only a super_admin grants super_admin or edits a super_admin;
// an actor never deactivates or changes the role of their own profile
func ExecuteUpdateUser(ctx context.Context, input UpdateUserInput, deps UpdateUserDeps) (profile.Profile, error) {
	if input.ID == "" {
		return profile.Profile{}, ErrUserIDRequired
	}

	p, err := deps.ProfileStore.GetByID(ctx, input.ID)
	if err != nil {
		return profile.Profile{}, err
	}
	if p.Role == profile.RoleSuperAdmin && !input.Actor.IsSuperAdmin() {
		return profile.Profile{}, ErrSuperAdminOnly
	}
	self := p.ID == input.Actor.ID

	if input.FullName != nil {
		p.FullName = strings.TrimSpace(*input.FullName)
	}
	if input.Role != nil && *input.Role != p.Role {
		if !profile.IsValidRole(*input.Role) {
			return profile.Profile{}, profile.ErrInvalidRole
		}
		if *input.Role == profile.RoleSuperAdmin && !input.Actor.IsSuperAdmin() {
			return profile.Profile{}, ErrSuperAdminOnly
		}
		if self {
			return profile.Profile{}, ErrSelfModification
		}
		p.Role = *input.Role
	}
	if input.IsActive != nil {
		if self && !*input.IsActive {
			return profile.Profile{}, ErrSelfModification
		}
		p.IsActive = *input.IsActive
	}

	if err := p.Validate(); err != nil {
		return profile.Profile{}, err
	}
	p.UpdatedAt = deps.Clock.now()
	if err := deps.ProfileStore.Save(ctx, p); err != nil {
		return profile.Profile{}, err
	}

	zap.L().Info("audit_event", zap.String("event", "user_updated"),
		zap.String("profile_id", p.ID), zap.String("actor_id", input.Actor.ID),
		zap.String("role", p.Role), zap.Bool("is_active", p.IsActive))
	return p, nil
}

// DeleteUserInput carries input for DeleteUser.
type DeleteUserInput struct {
	Actor Actor
	ID    string
}

// ExecuteDeleteUser removes a profile. Linked members become unlinked.
// PRE: none
// POST: Profile removed, or ErrSuperAdminOnly / ErrSelfModification / profile.ErrNotFound
func ExecuteDeleteUser(ctx context.Context, input DeleteUserInput, deps UpdateUserDeps) error {
	if !input.Actor.IsSuperAdmin() {
		return ErrSuperAdminOnly
	}
	if input.ID == "" {
		return ErrUserIDRequired
	}
	if input.ID == input.Actor.ID {
		return ErrSelfModification
	}
	if err := deps.ProfileStore.Delete(ctx, input.ID); err != nil {
		return err
	}
	zap.L().Info("audit_event", zap.String("event", "user_deleted"), zap.String("profile_id", input.ID), zap.String("actor_id", input.Actor.ID))
	return nil
}
