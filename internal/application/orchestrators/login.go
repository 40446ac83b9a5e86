package orchestrators

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"bookclub/internal/domain/profile"
)

// ProfileStoreForLogin defines the store interface needed by Login.
type ProfileStoreForLogin interface {
	GetByEmail(ctx context.Context, email string) (profile.Profile, error)
}

// LoginInput carries input for the login orchestrator.
type LoginInput struct {
	Email    string
	Password string
}

// LoginResult is the identity embedded in a session.
type LoginResult struct {
	ProfileID string
	Email     string
	Name      string
	Role      string
	Image     string
}

// LoginDeps holds dependencies for Login.
type LoginDeps struct {
	ProfileStore ProfileStoreForLogin
}

var (
	ErrCredentialsRequired = errors.New("email and password are required")
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountDeactivated  = errors.New("account has been deactivated")
	ErrPasswordNotSet      = errors.New("password has not been set")
)

// ExecuteLogin validates credentials and returns the identity for session creation.
// PRE: none
// POST: Returns identity on success; unknown email and wrong password give the same error
// INVARIANT: Inactive profiles and profiles without a password never log in
func ExecuteLogin(ctx context.Context, input LoginInput, deps LoginDeps) (LoginResult, error) {
	email := profile.NormalizeEmail(input.Email)
	if email == "" || input.Password == "" {
		return LoginResult{}, ErrCredentialsRequired
	}

	p, err := deps.ProfileStore.GetByEmail(ctx, email)
	if errors.Is(err, profile.ErrNotFound) {
		zap.L().Info("auth_event", zap.String("event", "login_failed"), zap.String("email", email), zap.String("reason", "not_found"))
		return LoginResult{}, ErrInvalidCredentials
	}
	if err != nil {
		return LoginResult{}, err
	}

	if !p.IsActive {
		zap.L().Info("auth_event", zap.String("event", "login_blocked"), zap.String("email", email), zap.String("reason", "inactive"))
		return LoginResult{}, ErrAccountDeactivated
	}
	if !p.HasPassword() {
		zap.L().Info("auth_event", zap.String("event", "login_blocked"), zap.String("email", email), zap.String("reason", "no_password"))
		return LoginResult{}, ErrPasswordNotSet
	}
	if err := p.CheckPassword(input.Password); err != nil {
		zap.L().Info("auth_event", zap.String("event", "login_failed"), zap.String("email", email), zap.String("reason", "wrong_password"))
		return LoginResult{}, ErrInvalidCredentials
	}

	zap.L().Info("auth_event", zap.String("event", "login_success"), zap.String("profile_id", p.ID), zap.String("role", p.Role))
	return LoginResult{
		ProfileID: p.ID,
		Email:     p.Email,
		Name:      strings.TrimSpace(p.FullName),
		Role:      p.Role,
		Image:     p.AvatarURL,
	}, nil
}
