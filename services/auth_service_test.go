package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arenastack/tournament-registration/services"
	"github.com/arenastack/tournament-registration/utils"
)

func TestLogin(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.adminRepo().Upsert(context.Background(), "admin@example.com", "Admin", mustHash(t, "s3cret")))
	svc := services.NewAuthService(store.adminRepo())

	admin, err := svc.Login(context.Background(), services.LoginInput{
		Email: "admin@example.com", Password: "s3cret",
	})
	require.NoError(t, err)
	assert.Equal(t, "admin@example.com", admin.Email)
	assert.Equal(t, "Admin", admin.DisplayName)
}

// Неизвестный email и неверный пароль неразличимы для клиента.
func TestLogin_InvalidCredentials(t *testing.T) {
	store := newMemStore()
	require.NoError(t, store.adminRepo().Upsert(context.Background(), "admin@example.com", "Admin", mustHash(t, "s3cret")))
	svc := services.NewAuthService(store.adminRepo())

	_, wrongPassword := svc.Login(context.Background(), services.LoginInput{
		Email: "admin@example.com", Password: "wrong",
	})
	assert.ErrorIs(t, wrongPassword, services.ErrAuthInvalidCredentials)

	_, unknownEmail := svc.Login(context.Background(), services.LoginInput{
		Email: "nobody@example.com", Password: "s3cret",
	})
	assert.ErrorIs(t, unknownEmail, services.ErrAuthInvalidCredentials)
	assert.Equal(t, wrongPassword, unknownEmail)
}

func mustHash(t *testing.T, password string) string {
	t.Helper()
	hash, err := utils.HashPassword(password)
	require.NoError(t, err)
	return hash
}
