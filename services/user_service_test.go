package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yeremiapane/taqueria-app/models"
	"github.com/yeremiapane/taqueria-app/testutil"
	"github.com/yeremiapane/taqueria-app/utils"
	"golang.org/x/crypto/bcrypt"
)

func newUserService(t *testing.T) (*UserService, *fixture) {
	t.Helper()
	f := newFixture(t)
	users := NewUserService(f.db, f.audit)
	users.HashCost = bcrypt.MinCost
	users.Now = f.clock.Now
	return users, f
}

func TestRegister(t *testing.T) {
	users, _ := newUserService(t)

	user, err := users.Register(ctx, "  mesero1 ", "secret123", models.RoleWaiter)
	require.NoError(t, err)
	assert.Equal(t, "mesero1", user.Username)
	assert.NotEqual(t, "secret123", user.Password)
	assert.True(t, user.IsActive)

	_, err = users.Register(ctx, "mesero1", "other", models.RoleCashier)
	assert.ErrorIs(t, err, ErrUserExists)
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	users, _ := newUserService(t)

	_, err := users.Register(ctx, "boss", "secret123", models.RoleAdmin)
	assert.ErrorIs(t, err, ErrInvalidRole)
	_, err = users.Register(ctx, "boss", "secret123", models.Role("chef"))
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestRegisterRequiresCredentials(t *testing.T) {
	users, _ := newUserService(t)

	_, err := users.Register(ctx, "  ", "secret123", models.RoleWaiter)
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = users.Register(ctx, "mesero2", "", models.RoleWaiter)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAuthenticate(t *testing.T) {
	users, f := newUserService(t)
	testutil.CreateUser(t, f.db, "caja1", models.RoleCashier)

	user, err := users.Authenticate(ctx, "caja1", "secret123")
	require.NoError(t, err)
	require.NotNil(t, user.LastLogin)

	stored, err := users.Get(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.LastLogin)

	_, err = users.Authenticate(ctx, "caja1", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = users.Authenticate(ctx, "nobody", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticateInactiveUser(t *testing.T) {
	users, f := newUserService(t)
	u := testutil.CreateUser(t, f.db, "mesero1", models.RoleWaiter)
	require.NoError(t, f.db.Model(&u).Update("is_active", false).Error)

	_, err := users.Authenticate(ctx, "mesero1", "secret123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogoutRevokesToken(t *testing.T) {
	users, f := newUserService(t)
	u := testutil.CreateUser(t, f.db, "mesero1", models.RoleWaiter)

	token, err := utils.GenerateToken(u.ID, u.Username, string(u.Role))
	require.NoError(t, err)
	claims, err := utils.ValidateToken(token)
	require.NoError(t, err)

	users.Logout(ctx, Actor{UserID: u.ID, Username: u.Username, Role: u.Role}, token, claims.ExpiresAt.Time)

	_, err = utils.ValidateToken(token)
	assert.ErrorIs(t, err, utils.ErrBlacklistedToken)
}

func TestGetUnknownUser(t *testing.T) {
	users, _ := newUserService(t)

	_, err := users.Get(ctx, 42)
	assert.ErrorIs(t, err, ErrEntityNotFound)
}
