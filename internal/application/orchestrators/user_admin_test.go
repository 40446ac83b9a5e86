package orchestrators

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookclub/internal/domain/profile"
)

func TestExecuteCreateUser_WithPasswordSendsWelcome(t *testing.T) {
	store := newMockProfileStore()
	mailer := &mockMailer{}

	p, err := ExecuteCreateUser(context.Background(), CreateUserInput{
		Email: "New@Example.com", FullName: " New Reader ", Password: "Welcome1A",
	}, CreateUserDeps{ProfileStore: store, Mailer: mailer, Clock: fixedClock()})
	require.NoError(t, err)

	assert.Equal(t, "new@example.com", p.Email)
	assert.Equal(t, "New Reader", p.FullName)
	assert.Equal(t, profile.RoleMember, p.Role)
	assert.True(t, p.IsActive)
	assert.NoError(t, p.CheckPassword("Welcome1A"))
	assert.Empty(t, p.ResetToken)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "welcome", mailer.sent[0].Kind)
	assert.Equal(t, "Welcome1A", mailer.sent[0].Secret)
}

func TestExecuteCreateUser_WithoutPasswordSendsInvite(t *testing.T) {
	mailer := &mockMailer{}
	p, err := ExecuteCreateUser(context.Background(), CreateUserInput{Email: "inv@example.com", FullName: "Invitee"},
		CreateUserDeps{ProfileStore: newMockProfileStore(), Mailer: mailer, Clock: fixedClock()})
	require.NoError(t, err)

	assert.False(t, p.HasPassword())
	assert.Equal(t, fixedNow.Add(profile.InviteTokenTTL), p.ResetTokenExpiry)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, sentMail{"invite", "inv@example.com", "Invitee", p.ResetToken}, mailer.sent[0])
}

func TestExecuteCreateUser_Errors(t *testing.T) {
	existing := profileWithPassword("p1", "taken@example.com", profile.RoleMember, "")
	deps := CreateUserDeps{ProfileStore: newMockProfileStore(existing), Mailer: &mockMailer{}, Clock: fixedClock()}
	ctx := context.Background()

	_, err := ExecuteCreateUser(ctx, CreateUserInput{Email: "TAKEN@example.com", FullName: "X"}, deps)
	assert.ErrorIs(t, err, profile.ErrEmailTaken)

	_, err = ExecuteCreateUser(ctx, CreateUserInput{Email: "x@example.com"}, deps)
	assert.ErrorIs(t, err, ErrUserFieldsRequired)

	_, err = ExecuteCreateUser(ctx, CreateUserInput{Email: "x@example.com", FullName: "X", Password: "weakpass"}, deps)
	assert.ErrorIs(t, err, profile.ErrPasswordTooWeak)
}

func TestExecuteCreateUser_MailFailureKeepsProfile(t *testing.T) {
	store := newMockProfileStore()
	p, err := ExecuteCreateUser(context.Background(), CreateUserInput{Email: "x@example.com", FullName: "X"},
		CreateUserDeps{ProfileStore: store, Mailer: &mockMailer{err: errMailDown}, Clock: fixedClock()})
	require.NoError(t, err)
	_, err = store.GetByID(context.Background(), p.ID)
	assert.NoError(t, err)
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestExecuteUpdateUser_Rules(t *testing.T) {
	super := profileWithPassword("super", "s@example.com", profile.RoleSuperAdmin, "")
	admin := profileWithPassword("admin", "a@example.com", profile.RoleAdmin, "")
	reader := profileWithPassword("reader", "r@example.com", profile.RoleMember, "")
	ctx := context.Background()
	asAdmin := Actor{ID: "admin", Role: profile.RoleAdmin}
	asSuper := Actor{ID: "super", Role: profile.RoleSuperAdmin}

	tests := []struct {
		name  string
		input UpdateUserInput
		want  error
	}{
		{"missing id", UpdateUserInput{Actor: asAdmin}, ErrUserIDRequired},
		{"unknown id", UpdateUserInput{Actor: asAdmin, ID: "ghost"}, profile.ErrNotFound},
		{"invalid role", UpdateUserInput{Actor: asAdmin, ID: "reader", Role: strPtr("owner")}, profile.ErrInvalidRole},
		{"admin cannot grant super_admin", UpdateUserInput{Actor: asAdmin, ID: "reader", Role: strPtr(profile.RoleSuperAdmin)}, ErrSuperAdminOnly},
		{"admin cannot edit super_admin", UpdateUserInput{Actor: asAdmin, ID: "super", FullName: strPtr("X")}, ErrSuperAdminOnly},
		{"cannot demote self", UpdateUserInput{Actor: asAdmin, ID: "admin", Role: strPtr(profile.RoleMember)}, ErrSelfModification},
		{"cannot deactivate self", UpdateUserInput{Actor: asSuper, ID: "super", IsActive: boolPtr(false)}, ErrSelfModification},
		{"empty name", UpdateUserInput{Actor: asAdmin, ID: "reader", FullName: strPtr("  ")}, profile.ErrEmptyFullName},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := UpdateUserDeps{ProfileStore: newMockProfileStore(super, admin, reader), Clock: fixedClock()}
			_, err := ExecuteUpdateUser(ctx, tt.input, deps)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	t.Run("admin promotes and deactivates a member", func(t *testing.T) {
		store := newMockProfileStore(super, admin, reader)
		p, err := ExecuteUpdateUser(ctx, UpdateUserInput{
			Actor: asAdmin, ID: "reader", Role: strPtr(profile.RoleAdmin), IsActive: boolPtr(false),
		}, UpdateUserDeps{ProfileStore: store, Clock: fixedClock()})
		require.NoError(t, err)
		assert.Equal(t, profile.RoleAdmin, p.Role)
		assert.False(t, p.IsActive)
	})

	t.Run("super_admin grants super_admin", func(t *testing.T) {
		store := newMockProfileStore(super, admin, reader)
		p, err := ExecuteUpdateUser(ctx, UpdateUserInput{Actor: asSuper, ID: "admin", Role: strPtr(profile.RoleSuperAdmin)},
			UpdateUserDeps{ProfileStore: store, Clock: fixedClock()})
		require.NoError(t, err)
		assert.Equal(t, profile.RoleSuperAdmin, p.Role)
	})
}

func TestExecuteDeleteUser(t *testing.T) {
	super := profileWithPassword("super", "s@example.com", profile.RoleSuperAdmin, "")
	reader := profileWithPassword("reader", "r@example.com", profile.RoleMember, "")
	store := newMockProfileStore(super, reader)
	deps := UpdateUserDeps{ProfileStore: store}
	ctx := context.Background()

	assert.ErrorIs(t, ExecuteDeleteUser(ctx, DeleteUserInput{Actor: Actor{ID: "x", Role: profile.RoleAdmin}, ID: "reader"}, deps), ErrSuperAdminOnly)
	assert.ErrorIs(t, ExecuteDeleteUser(ctx, DeleteUserInput{Actor: Actor{ID: "super", Role: profile.RoleSuperAdmin}, ID: "super"}, deps), ErrSelfModification)
	require.NoError(t, ExecuteDeleteUser(ctx, DeleteUserInput{Actor: Actor{ID: "super", Role: profile.RoleSuperAdmin}, ID: "reader"}, deps))
	assert.ErrorIs(t, ExecuteDeleteUser(ctx, DeleteUserInput{Actor: Actor{ID: "super", Role: profile.RoleSuperAdmin}, ID: "reader"}, deps), profile.ErrNotFound)
}

func TestExecuteSeedAdmin(t *testing.T) {
	store := newMockProfileStore()
	ctx := context.Background()
	deps := SeedAdminDeps{ProfileStore: store, Clock: fixedClock()}

	res, err := ExecuteSeedAdmin(ctx, SeedAdminInput{Email: "Admin@Example.com"}, deps)
	require.NoError(t, err)
	assert.True(t, res.Created)
	assert.NotEmpty(t, res.InviteToken)

	p, err := store.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, profile.RoleSuperAdmin, p.Role)

	again, err := ExecuteSeedAdmin(ctx, SeedAdminInput{Email: "other@example.com", Password: "Passw0rdX"}, deps)
	require.NoError(t, err)
	assert.False(t, again.Created)
	count, _ := store.Count(ctx)
	assert.Equal(t, 1, count)
}
