package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/bugtracker/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", 60)
	user := &domain.User{ID: "user-1", Username: "alice", Role: domain.RoleUser}

	token, expiresAt, err := tm.GenerateToken(user)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.False(t, expiresAt.IsZero())

	claims, err := tm.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, domain.RoleUser, claims.Role)
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	tm := NewTokenManager("secret", 60)
	other := NewTokenManager("different", 60)
	user := &domain.User{ID: "user-1", Username: "alice", Role: domain.RoleUser}

	token, _, err := tm.GenerateToken(user)
	require.NoError(t, err)

	_, err = other.ParseToken(token)
	assert.Error(t, err)
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	tm := NewTokenManager("secret", 60)
	_, err := tm.ParseToken("not.a.token")
	assert.Error(t, err)
}

func TestExpiredTokenRejected(t *testing.T) {
	tm := NewTokenManager("secret", 60)
	tm.ttl = -1 // already expired when issued
	user := &domain.User{ID: "user-1", Username: "alice", Role: domain.RoleUser}

	token, _, err := tm.GenerateToken(user)
	require.NoError(t, err)

	_, err = tm.ParseToken(token)
	assert.Error(t, err)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22", 4)
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.NoError(t, ComparePassword(hash, "hunter22"))
	assert.Error(t, ComparePassword(hash, "wrong"))
}
