package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ikkim/catalogo-backend/internal/app/model"
	"github.com/ikkim/catalogo-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-secret"

type unavailableBlacklist struct{}

func (unavailableBlacklist) Revoke(context.Context, string, time.Duration) error {
	return errors.New("redis down")
}

func (unavailableBlacklist) IsRevoked(context.Context, string) (bool, error) {
	return false, errors.New("redis down")
}

func newAuthService(env *testEnv, blacklist TokenBlacklist) AuthService {
	policy := NewAdminPolicy([]string{"Invitada@Example.com"}, []string{"owner", "editor"})
	return NewAuthService(env.userRepo, blacklist, policy, testJWTSecret, time.Hour)
}

func TestAdminPolicy_Allows(t *testing.T) {
	policy := NewAdminPolicy([]string{" Invitada@Example.com "}, []string{"Owner"})

	assert.True(t, policy.Allows("invitada@example.com", model.RoleViewer))
	assert.True(t, policy.Allows("otra@example.com", model.RoleOwner))
	assert.False(t, policy.Allows("otra@example.com", model.RoleEditor))
}

func TestAuthService_CreateUserAndLogin(t *testing.T) {
	env := setupServiceTest(t)
	svc := newAuthService(env, NewMemoryStore())

	user, err := svc.CreateUser(" Duena@Example.com ", "secreto123", "Dueña", model.RoleOwner)
	require.NoError(t, err)
	assert.Equal(t, "duena@example.com", user.Email)
	assert.NotEqual(t, "secreto123", user.PasswordHash)

	_, err = svc.CreateUser("duena@example.com", "secreto123", "", model.RoleOwner)
	assert.ErrorIs(t, err, ErrEmailAlreadyExists)
	_, err = svc.CreateUser("otra@example.com", "corta", "", model.RoleOwner)
	assert.ErrorIs(t, err, util.ErrWeakPassword)
	_, err = svc.CreateUser("otra@example.com", "secreto123", "", model.UserRole("root"))
	assert.ErrorIs(t, err, ErrInvalidRole)
	_, err = svc.CreateUser("sin-arroba", "secreto123", "", model.RoleOwner)
	var fe *FieldError
	assert.ErrorAs(t, err, &fe)

	logged, token, err := svc.Login("DUENA@example.com", "secreto123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, logged.ID)
	require.NotNil(t, logged.LastLoginAt)
	assert.NotEmpty(t, token.Value)

	_, _, err = svc.Login("duena@example.com", "incorrecta")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login("nadie@example.com", "secreto123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthService_AuthenticateAndLogout(t *testing.T) {
	env := setupServiceTest(t)
	svc := newAuthService(env, NewMemoryStore())
	ctx := context.Background()

	_, err := svc.CreateUser("duena@example.com", "secreto123", "", model.RoleOwner)
	require.NoError(t, err)
	_, token, err := svc.Login("duena@example.com", "secreto123")
	require.NoError(t, err)

	claims, err := svc.Authenticate(ctx, token.Value)
	require.NoError(t, err)
	assert.Equal(t, token.ID, claims.ID)

	require.NoError(t, svc.Logout(ctx, claims))
	_, err = svc.Authenticate(ctx, token.Value)
	assert.ErrorIs(t, err, ErrTokenRevoked)

	_, err = svc.Authenticate(ctx, "no-es-un-jwt")
	assert.ErrorIs(t, err, util.ErrInvalidToken)
}

func TestAuthService_AuthenticateFailsOpenWithoutBlacklist(t *testing.T) {
	env := setupServiceTest(t)
	svc := newAuthService(env, unavailableBlacklist{})

	token, err := util.GenerateAccessToken(1, "duena@example.com", "owner", testJWTSecret, time.Hour)
	require.NoError(t, err)

	claims, err := svc.Authenticate(context.Background(), token.Value)
	require.NoError(t, err)
	assert.Equal(t, uint(1), claims.UserID)
}

func TestAuthService_Authorize(t *testing.T) {
	env := setupServiceTest(t)
	svc := newAuthService(env, NewMemoryStore())

	editor, err := svc.CreateUser("editor@example.com", "secreto123", "", model.RoleEditor)
	require.NoError(t, err)
	viewer, err := svc.CreateUser("lector@example.com", "secreto123", "", model.RoleViewer)
	require.NoError(t, err)
	guest, err := svc.CreateUser("invitada@example.com", "secreto123", "", model.RoleViewer)
	require.NoError(t, err)

	_, err = svc.Authorize(editor.ID)
	assert.NoError(t, err)
	_, err = svc.Authorize(guest.ID)
	assert.NoError(t, err)
	_, err = svc.Authorize(viewer.ID)
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = svc.Authorize(9999)
	assert.ErrorIs(t, err, ErrUserNotFound)

	editor.Role = model.RoleViewer
	require.NoError(t, env.userRepo.Update(editor))
	_, err = svc.Authorize(editor.ID)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	now := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	require.NoError(t, store.Revoke(ctx, "jti", time.Minute))
	revoked, err := store.IsRevoked(ctx, "jti")
	require.NoError(t, err)
	assert.True(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, err = store.IsRevoked(ctx, "jti")
	require.NoError(t, err)
	assert.False(t, revoked)

	for i := 0; i < 3; i++ {
		ok, err := store.Allow(ctx, "k", 3, time.Minute)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, _ := store.Allow(ctx, "k", 3, time.Minute)
	assert.False(t, ok)

	now = now.Add(61 * time.Second)
	ok, _ = store.Allow(ctx, "k", 3, time.Minute)
	assert.True(t, ok)
}
