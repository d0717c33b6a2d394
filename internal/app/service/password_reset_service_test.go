package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/ikkim/catalogo-backend/internal/app/model"
	"github.com/ikkim/catalogo-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokenFromLink(t *testing.T, link string) string {
	t.Helper()
	parsed, err := url.Parse(link)
	require.NoError(t, err)
	return parsed.Query().Get("token")
}

func TestResetLink(t *testing.T) {
	assert.Equal(t, "https://catalogo.test/admin/reset?token=abc", ResetLink("https://catalogo.test/", "abc"))
}

func TestPasswordResetService_Flow(t *testing.T) {
	env := setupServiceTest(t)
	mailer := &recordingMailer{}
	svc := NewPasswordResetService(env.resetRepo, env.userRepo, mailer, NewMemoryStore(), "https://catalogo.test")
	auth := newAuthService(env, NewMemoryStore())
	ctx := context.Background()

	_, err := auth.CreateUser("duena@example.com", "secreto123", "", model.RoleOwner)
	require.NoError(t, err)

	require.NoError(t, svc.RequestReset(ctx, "nadie@example.com", "10.0.0.1"))
	assert.Empty(t, mailer.to)

	require.NoError(t, svc.RequestReset(ctx, " Duena@Example.com", "10.0.0.1"))
	require.NoError(t, svc.RequestReset(ctx, "duena@example.com", "10.0.0.1"))
	require.Len(t, mailer.links, 2)
	assert.Equal(t, []string{"duena@example.com", "duena@example.com"}, mailer.to)
	assert.True(t, strings.HasPrefix(mailer.links[1], "https://catalogo.test/admin/reset?token="))

	first := tokenFromLink(t, mailer.links[0])
	second := tokenFromLink(t, mailer.links[1])
	assert.Len(t, second, ResetTokenLength*2)

	assert.ErrorIs(t, svc.ResetPassword(first, "nuevoSecreto1"), ErrResetTokenUsed)
	assert.ErrorIs(t, svc.ResetPassword(second, "corta"), util.ErrWeakPassword)
	require.NoError(t, svc.ResetPassword(second, "nuevoSecreto1"))
	assert.ErrorIs(t, svc.ResetPassword(second, "otroSecreto1"), ErrResetTokenUsed)
	assert.ErrorIs(t, svc.ResetPassword("desconocido", "otroSecreto1"), ErrInvalidResetToken)

	_, _, err = auth.Login("duena@example.com", "nuevoSecreto1")
	assert.NoError(t, err)
}

func TestPasswordResetService_Expired(t *testing.T) {
	env := setupServiceTest(t)
	svc := NewPasswordResetService(env.resetRepo, env.userRepo, &recordingMailer{}, nil, "https://catalogo.test")

	require.NoError(t, env.resetRepo.Create(&model.PasswordReset{
		Email:     "duena@example.com",
		Token:     "vencido",
		ExpiresAt: time.Now().Add(-time.Minute),
	}))
	assert.ErrorIs(t, svc.ResetPassword("vencido", "nuevoSecreto1"), ErrResetTokenExpired)
}

func TestPasswordResetService_RateLimited(t *testing.T) {
	env := setupServiceTest(t)
	svc := NewPasswordResetService(env.resetRepo, env.userRepo, &recordingMailer{}, NewMemoryStore(), "https://catalogo.test")
	ctx := context.Background()

	for i := 0; i < resetRequestLimit; i++ {
		require.NoError(t, svc.RequestReset(ctx, "nadie@example.com", "10.0.0.9"))
	}
	assert.ErrorIs(t, svc.RequestReset(ctx, "nadie@example.com", "10.0.0.9"), ErrRateLimited)
	assert.NoError(t, svc.RequestReset(ctx, "nadie@example.com", "10.0.0.10"))
}

func TestPasswordResetService_MailerFailure(t *testing.T) {
	env := setupServiceTest(t)
	mailer := &recordingMailer{err: errors.New("smtp down")}
	svc := NewPasswordResetService(env.resetRepo, env.userRepo, mailer, nil, "https://catalogo.test")
	auth := newAuthService(env, NewMemoryStore())

	_, err := auth.CreateUser("duena@example.com", "secreto123", "", model.RoleOwner)
	require.NoError(t, err)
	assert.Error(t, svc.RequestReset(context.Background(), "duena@example.com", "10.0.0.1"))
}
