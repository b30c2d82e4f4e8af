package auth

import (
	"testing"
	"time"

	"cardbridge/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	cfg := &config.JWTConfig{
		AccessSecret: "test-secret",
		AccessExpiry: time.Minute,
		Issuer:       "cardbridge",
	}

	token, err := GenerateAccessToken(cfg, 42, "surf@uk.com", "SHOPPER")
	require.NoError(t, err)

	claims, err := ParseAccessToken(cfg, token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "surf@uk.com", claims.Email)
	assert.Equal(t, "SHOPPER", claims.Role)
}

func TestParseAccessToken_WrongSecret(t *testing.T) {
	cfg := &config.JWTConfig{AccessSecret: "secret-a", AccessExpiry: time.Minute, Issuer: "cardbridge"}
	token, err := GenerateAccessToken(cfg, 1, "a@b.com", "SHOPPER")
	require.NoError(t, err)

	other := &config.JWTConfig{AccessSecret: "secret-b"}
	_, err = ParseAccessToken(other, token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
