package orchestrators

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookclub/internal/domain/profile"
)

func TestExecuteLogin(t *testing.T) {
	active := profileWithPassword("p1", "ada@example.com", profile.RoleAdmin, "Passw0rdA")
	inactive := profileWithPassword("p2", "bo@example.com", profile.RoleMember, "Passw0rdB")
	inactive.IsActive = false
	invited := profileWithPassword("p3", "cy@example.com", profile.RoleMember, "")
	deps := LoginDeps{ProfileStore: newMockProfileStore(active, inactive, invited)}
	ctx := context.Background()

	t.Run("success normalises email", func(t *testing.T) {
		res, err := ExecuteLogin(ctx, LoginInput{Email: "  ADA@example.com ", Password: "Passw0rdA"}, deps)
		require.NoError(t, err)
		assert.Equal(t, "p1", res.ProfileID)
		assert.Equal(t, profile.RoleAdmin, res.Role)
		assert.Equal(t, "User p1", res.Name)
	})

	t.Run("unknown email and wrong password look the same", func(t *testing.T) {
		_, errUnknown := ExecuteLogin(ctx, LoginInput{Email: "nobody@example.com", Password: "Passw0rdA"}, deps)
		_, errWrong := ExecuteLogin(ctx, LoginInput{Email: "ada@example.com", Password: "nope"}, deps)
		assert.ErrorIs(t, errUnknown, ErrInvalidCredentials)
		assert.ErrorIs(t, errWrong, ErrInvalidCredentials)
	})

	t.Run("deactivated", func(t *testing.T) {
		_, err := ExecuteLogin(ctx, LoginInput{Email: "bo@example.com", Password: "Passw0rdB"}, deps)
		assert.ErrorIs(t, err, ErrAccountDeactivated)
	})

	t.Run("password not set", func(t *testing.T) {
		_, err := ExecuteLogin(ctx, LoginInput{Email: "cy@example.com", Password: "anything"}, deps)
		assert.ErrorIs(t, err, ErrPasswordNotSet)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, err := ExecuteLogin(ctx, LoginInput{Email: "ada@example.com"}, deps)
		assert.ErrorIs(t, err, ErrCredentialsRequired)
	})
}
