package orchestrators

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"bookclub/internal/domain/profile"
)

// ProfileStoreForForgotPassword defines the store interface needed by ForgotPassword.
type ProfileStoreForForgotPassword interface {
	GetByEmail(ctx context.Context, email string) (profile.Profile, error)
	SetResetToken(ctx context.Context, id, token string, expiry, now time.Time) error
}

// ResetMailer sends password reset links.
type ResetMailer interface {
	SendReset(ctx context.Context, to, name, token string) error
}

// ForgotPasswordInput carries input for the forgot-password orchestrator.
type ForgotPasswordInput struct {
	Email string
}

// ForgotPasswordDeps holds dependencies for ForgotPassword.
type ForgotPasswordDeps struct {
	ProfileStore ProfileStoreForForgotPassword
	Mailer       ResetMailer
	Clock        Clock
}

// ErrEmailRequired is returned when no email address is supplied.
var ErrEmailRequired = errors.New("email address is required")

// ExecuteForgotPassword issues a one hour reset token and emails the link.
// PRE: none
// POST: Returns nil whether or not the email is registered
// INVARIANT: Any earlier token for the profile is replaced
func ExecuteForgotPassword(ctx context.Context, input ForgotPasswordInput, deps ForgotPasswordDeps) error {
	email := profile.NormalizeEmail(input.Email)
	if email == "" {
		return ErrEmailRequired
	}

	p, err := deps.ProfileStore.GetByEmail(ctx, email)
	if errors.Is(err, profile.ErrNotFound) {
		zap.L().Info("auth_event", zap.String("event", "password_reset_unknown_email"), zap.String("email", email))
		return nil
	}
	if err != nil {
		return err
	}

	now := deps.Clock.now()
	token, err := p.IssueResetToken(now, profile.ResetTokenTTL)
	if err != nil {
		return err
	}
	if err := deps.ProfileStore.SetResetToken(ctx, p.ID, token, p.ResetTokenExpiry, now); err != nil {
		return err
	}

	if err := deps.Mailer.SendReset(ctx, p.Email, p.FullName, token); err != nil {
		// Same response as for an unknown email.
		zap.L().Error("password_reset_email_failed", zap.String("profile_id", p.ID), zap.Error(err))
	}
	zap.L().Info("auth_event", zap.String("event", "password_reset_requested"), zap.String("profile_id", p.ID))
	return nil
}
