package orchestrators

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"bookclub/internal/domain/profile"
)

// ProfileStoreForResetPassword defines the store interface needed by ResetPassword.
type ProfileStoreForResetPassword interface {
	GetByResetToken(ctx context.Context, token string) (profile.Profile, error)
	ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) (profile.Profile, error)
}

// ResetPasswordInput carries input for the reset-password orchestrator.
type ResetPasswordInput struct {
	Token    string
	Password string
}

// ResetPasswordDeps holds dependencies for ResetPassword.
type ResetPasswordDeps struct {
	ProfileStore ProfileStoreForResetPassword
	Clock        Clock
}

// ErrResetFieldsRequired is returned when token or password is missing.
var ErrResetFieldsRequired = errors.New("reset token and new password are required")

// ExecuteResetPassword sets a new password using a reset or invite token.
// PRE: none
// POST: Password hash replaced and token cleared, or an error from the profile domain
// INVARIANT: A token is accepted at most once
func ExecuteResetPassword(ctx context.Context, input ResetPasswordInput, deps ResetPasswordDeps) error {
	if input.Token == "" || input.Password == "" {
		return ErrResetFieldsRequired
	}
	if err := profile.ValidatePassword(input.Password); err != nil {
		return err
	}

	now := deps.Clock.now()
	p, err := deps.ProfileStore.GetByResetToken(ctx, input.Token)
	if errors.Is(err, profile.ErrNotFound) {
		return profile.ErrResetTokenInvalid
	}
	if err != nil {
		return err
	}
	if err := p.CheckResetToken(input.Token, now); err != nil {
		return err
	}

	var hashed profile.Profile
	if err := hashed.SetPassword(input.Password); err != nil {
		return err
	}
	updated, err := deps.ProfileStore.ConsumeResetToken(ctx, input.Token, hashed.PasswordHash, now)
	if err != nil {
		return err
	}

	zap.L().Info("auth_event", zap.String("event", "password_reset_completed"), zap.String("profile_id", updated.ID))
	return nil
}
