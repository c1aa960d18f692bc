package auth

import (
	"testing"
	"time"

	"github.com/hanu-sports/storefront/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndVerify(t *testing.T) {
	sut := NewTokenManager("test-secret", time.Hour)
	user := &domain.User{ID: "u1", Role: domain.RoleAdmin}

	token, err := sut.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := sut.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestVerify_WrongSecret(t *testing.T) {
	token, err := NewTokenManager("secret-a", time.Hour).Issue(&domain.User{ID: "u1", Role: domain.RoleUser})
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", time.Hour).Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Expired(t *testing.T) {
	sut := NewTokenManager("test-secret", -time.Minute)
	token, err := sut.Issue(&domain.User{ID: "u1", Role: domain.RoleUser})
	require.NoError(t, err)

	_, err = sut.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerify_Garbage(t *testing.T) {
	sut := NewTokenManager("test-secret", time.Hour)
	_, err := sut.Verify("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter23"))
}
