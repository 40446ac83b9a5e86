package orchestrators

import (
	"context"

	"go.uber.org/zap"

	"bookclub/internal/domain/profile"
)

// ProfileStoreForSeed defines the store interface needed by SeedAdmin.
type ProfileStoreForSeed interface {
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, p profile.Profile) error
}

// SeedAdminInput carries the first administrator's credentials.
type SeedAdminInput struct {
	Email    string
	Password string // optional; without one a set-password token is issued
	FullName string
}

// SeedAdminResult reports what the seed did.
type SeedAdminResult struct {
	Created     bool
	ProfileID   string
	InviteToken string
}

// SeedAdminDeps holds dependencies for SeedAdmin.
type SeedAdminDeps struct {
	ProfileStore ProfileStoreForSeed
	Clock        Clock
}

// ExecuteSeedAdmin creates a super_admin when the profile table is empty.
// PRE: Schema is applied
// POST: At least one profile exists; idempotent on later boots
func ExecuteSeedAdmin(ctx context.Context, input SeedAdminInput, deps SeedAdminDeps) (SeedAdminResult, error) {
	count, err := deps.ProfileStore.Count(ctx)
	if err != nil {
		return SeedAdminResult{}, err
	}
	if count > 0 {
		return SeedAdminResult{}, nil
	}

	name := input.FullName
	if name == "" {
		name = "Administrator"
	}
	now := deps.Clock.now()
	p := profile.Profile{
		ID:        generateID(),
		Email:     profile.NormalizeEmail(input.Email),
		FullName:  name,
		Role:      profile.RoleSuperAdmin,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.Validate(); err != nil {
		return SeedAdminResult{}, err
	}

	result := SeedAdminResult{Created: true, ProfileID: p.ID}
	if input.Password != "" {
		if err := p.SetPassword(input.Password); err != nil {
			return SeedAdminResult{}, err
		}
	} else {
		token, err := p.IssueResetToken(now, profile.InviteTokenTTL)
		if err != nil {
			return SeedAdminResult{}, err
		}
		result.InviteToken = token
	}

	if err := deps.ProfileStore.Create(ctx, p); err != nil {
		return SeedAdminResult{}, err
	}
	zap.L().Info("audit_event", zap.String("event", "admin_seeded"), zap.String("email", p.Email), zap.Bool("invited", result.InviteToken != ""))
	return result, nil
}
