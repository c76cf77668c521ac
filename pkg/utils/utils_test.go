package utils

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTManager_AccessToken(t *testing.T) {
	m := NewJWTManager("secret", time.Minute, time.Hour)
	userID := uuid.New()

	token, err := m.GenerateAccessToken(userID, "jane", "manager", []string{"record-payments"})
	require.NoError(t, err)

	claims, err := m.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
	assert.Equal(t, "jane", claims.Username)
	assert.Equal(t, "manager", claims.Role)
	assert.Equal(t, []string{"record-payments"}, claims.Permissions)

	_, err = m.ValidateRefreshToken(token)
	assert.Error(t, err, "an access token is not a refresh token")
}

func TestJWTManager_RefreshToken(t *testing.T) {
	m := NewJWTManager("secret", time.Minute, time.Hour)
	userID := uuid.New()

	token, err := m.GenerateRefreshToken(userID)
	require.NoError(t, err)

	got, err := m.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.Equal(t, userID, got)

	_, err = m.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestJWTManager_RejectsForeignSecretAndExpiry(t *testing.T) {
	m := NewJWTManager("secret", time.Minute, time.Hour)
	other := NewJWTManager("other", time.Minute, time.Hour)

	token, err := other.GenerateAccessToken(uuid.New(), "x", "employee", nil)
	require.NoError(t, err)
	_, err = m.ValidateAccessToken(token)
	assert.Error(t, err)

	expired := NewJWTManager("secret", -time.Minute, time.Hour)
	token, err = expired.GenerateAccessToken(uuid.New(), "x", "employee", nil)
	require.NoError(t, err)
	_, err = m.ValidateAccessToken(token)
	assert.Error(t, err)
}

func TestPasswordHash(t *testing.T) {
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	assert.True(t, CheckPasswordHash("s3cret!", hash))
	assert.False(t, CheckPasswordHash("wrong", hash))
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	require.NoError(t, err)
	assert.Equal(t, uint(42), id)

	for _, bad := range []string{"", "0", "-1", "abc", "1.5"} {
		_, err := ParseID(bad)
		assert.Error(t, err, bad)
	}
}
