package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminTokenRoundTrip(t *testing.T) {
	token, err := GenerateAdminToken("admin-1", "mod@example.com", "moderator", "test-secret", time.Hour)
	require.NoError(t, err)

	claims, err := ValidateAdminToken(token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, "admin-1", claims.AdminID)
	assert.Equal(t, "mod@example.com", claims.Email)
	assert.Equal(t, "moderator", claims.Role)
}

func TestAdminTokenWrongSecret(t *testing.T) {
	token, err := GenerateAdminToken("admin-1", "mod@example.com", "moderator", "test-secret", time.Hour)
	require.NoError(t, err)

	_, err = ValidateAdminToken(token, "other-secret")
	assert.Error(t, err)
}

func TestAdminTokenExpired(t *testing.T) {
	token, err := GenerateAdminToken("admin-1", "mod@example.com", "moderator", "test-secret", -time.Minute)
	require.NoError(t, err)

	_, err = ValidateAdminToken(token, "test-secret")
	assert.Error(t, err)
}

func TestAdminTokenGarbage(t *testing.T) {
	_, err := ValidateAdminToken("not.a.token", "test-secret")
	assert.Error(t, err)
}

func TestPasswordHashAndVerify(t *testing.T) {
	hash, err := HashPassword("s3cure-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cure-pass", hash)

	assert.True(t, VerifyPassword("s3cure-pass", hash))
	assert.False(t, VerifyPassword("wrong-pass", hash))
}
