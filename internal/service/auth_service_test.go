package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/bugtracker/internal/config"
	"github.com/spec-kit/bugtracker/internal/domain"
)

func newAuthFixture() (*fakeUserRepo, *AuthService) {
	users := newFakeUserRepo()
	cfg := config.Config{
		Auth: config.AuthConfig{
			JWTSecret:             "test-secret",
			AccessTokenTTLMinutes: 60,
			BcryptCost:            4,
		},
	}
	return users, NewAuthService(cfg, AuthDependencies{UserRepo: users})
}

func TestRegister(t *testing.T) {
	ctx := context.Background()

	t.Run("creates account with hashed password", func(t *testing.T) {
		_, svc := newAuthFixture()
		user, err := svc.Register(ctx, RegisterInput{
			Username: "alice",
			Email:    "alice@example.com",
			Password: "hunter22",
			Role:     domain.RoleUser,
		})
		require.NoError(t, err)
		assert.NotEmpty(t, user.ID)
		assert.NotEqual(t, "hunter22", user.PasswordHash)
		assert.Equal(t, domain.RoleUser, user.Role)
	})

	t.Run("missing fields rejected", func(t *testing.T) {
		_, svc := newAuthFixture()
		_, err := svc.Register(ctx, RegisterInput{Username: "alice"})
		requireDomainCode(t, err, "VALIDATION_FAILED")
	})

	t.Run("unknown role rejected", func(t *testing.T) {
		_, svc := newAuthFixture()
		_, err := svc.Register(ctx, RegisterInput{
			Username: "alice", Email: "a@e.com", Password: "pw", Role: "superuser",
		})
		requireDomainCode(t, err, "VALIDATION_FAILED")
	})

	t.Run("duplicate username conflicts", func(t *testing.T) {
		_, svc := newAuthFixture()
		input := RegisterInput{Username: "alice", Email: "a@e.com", Password: "pw", Role: domain.RoleUser}
		_, err := svc.Register(ctx, input)
		require.NoError(t, err)
		input.Email = "other@e.com"
		_, err = svc.Register(ctx, input)
		requireDomainCode(t, err, "CONFLICT")
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	register := func(svc *AuthService) *domain.User {
		user, err := svc.Register(ctx, RegisterInput{
			Username: "bob", Email: "bob@e.com", Password: "secret", Role: domain.RoleStaff,
		})
		require.NoError(t, err)
		return user
	}

	t.Run("valid credentials issue a parseable token", func(t *testing.T) {
		_, svc := newAuthFixture()
		registered := register(svc)

		token, expiresAt, user, err := svc.Login(ctx, "bob", "secret")
		require.NoError(t, err)
		assert.Equal(t, registered.ID, user.ID)
		assert.True(t, expiresAt.After(time.Now()))

		claims, err := svc.TokenManager().ParseToken(token)
		require.NoError(t, err)
		assert.Equal(t, registered.ID, claims.UserID)
		assert.Equal(t, domain.RoleStaff, claims.Role)
	})

	t.Run("wrong password is unauthorized", func(t *testing.T) {
		_, svc := newAuthFixture()
		register(svc)
		_, _, _, err := svc.Login(ctx, "bob", "wrong")
		requireDomainCode(t, err, "UNAUTHORIZED")
	})

	t.Run("unknown username is unauthorized, not not-found", func(t *testing.T) {
		_, svc := newAuthFixture()
		_, _, _, err := svc.Login(ctx, "ghost", "whatever")
		requireDomainCode(t, err, "UNAUTHORIZED")
	})
}
