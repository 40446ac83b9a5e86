package orchestrators

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"bookclub/internal/domain/profile"
)

// ProfileStoreForCreateUser defines the store interface needed by CreateUser.
type ProfileStoreForCreateUser interface {
	GetByEmail(ctx context.Context, email string) (profile.Profile, error)
	Create(ctx context.Context, p profile.Profile) error
}

// UserMailer sends onboarding emails to new profiles.
type UserMailer interface {
	SendWelcome(ctx context.Context, to, name, password string) error
	SendInvite(ctx context.Context, to, name, token string) error
}

// CreateUserInput carries input for the orchestrator.
type CreateUserInput struct {
	Email    string
	FullName string
	Password string // optional; without one an invite link is sent
}

// CreateUserDeps holds dependencies for CreateUser.
type CreateUserDeps struct {
	ProfileStore ProfileStoreForCreateUser
	Mailer       UserMailer
	Clock        Clock
}

// ErrUserFieldsRequired is returned when email or full name is missing.
var ErrUserFieldsRequired = errors.New("email and full name are required")

// ExecuteCreateUser creates a member profile and sends the onboarding email.
// PRE: Caller is an admin
// POST: Profile created with role member; with a password it is hashed and a
// welcome email sent, without one a 7 day invite token is issued and emailed
// INVARIANT: Email must be unique
func ExecuteCreateUser(ctx context.Context, input CreateUserInput, deps CreateUserDeps) (profile.Profile, error) {
	email := profile.NormalizeEmail(input.Email)
	name := strings.TrimSpace(input.FullName)
	if email == "" || name == "" {
		return profile.Profile{}, ErrUserFieldsRequired
	}

	if _, err := deps.ProfileStore.GetByEmail(ctx, email); err == nil {
		return profile.Profile{}, profile.ErrEmailTaken
	} else if !errors.Is(err, profile.ErrNotFound) {
		return profile.Profile{}, err
	}

	now := deps.Clock.now()
	p := profile.Profile{
		ID:        generateID(),
		Email:     email,
		FullName:  name,
		Role:      profile.RoleMember,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.Validate(); err != nil {
		return profile.Profile{}, err
	}

	var inviteToken string
	if input.Password != "" {
		if err := p.SetPassword(input.Password); err != nil {
			return profile.Profile{}, err
		}
	} else {
		token, err := p.IssueResetToken(now, profile.InviteTokenTTL)
		if err != nil {
			return profile.Profile{}, err
		}
		inviteToken = token
	}

	if err := deps.ProfileStore.Create(ctx, p); err != nil {
		return profile.Profile{}, err
	}
	zap.L().Info("audit_event", zap.String("event", "user_created"), zap.String("profile_id", p.ID), zap.Bool("invited", inviteToken != ""))

	var mailErr error
	if inviteToken != "" {
		mailErr = deps.Mailer.SendInvite(ctx, p.Email, p.FullName, inviteToken)
	} else {
		mailErr = deps.Mailer.SendWelcome(ctx, p.Email, p.FullName, input.Password)
	}
	if mailErr != nil {
		// The profile exists; an admin can resend through forgot-password.
		zap.L().Error("user_onboarding_email_failed", zap.String("profile_id", p.ID), zap.Error(mailErr))
	}
	return p, nil
}
