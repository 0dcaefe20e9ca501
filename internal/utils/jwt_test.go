package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Parallel()

	tok, err := NewAccessToken("access-secret", "user-123", "a@b.com", 120)
	require.NoError(t, err)
	require.NotEmpty(t, tok.Token)
	assert.WithinDuration(t, time.Now().UTC().Add(120*time.Second), tok.Exp, 5*time.Second)

	claims, err := VerifyToken(tok.Token, "access-secret")
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "a@b.com", claims.Email)
}

func TestVerifyToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := NewAccessToken("right-secret", "u1", "u1@test.com", 60)
	require.NoError(t, err)

	_, err = VerifyToken(tok.Token, "wrong-secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

// A token signed with the access secret must fail verification against the
// refresh secret, and vice versa.
func TestVerifyToken_CrossSecretRejection(t *testing.T) {
	t.Parallel()

	const accessSecret = "access-secret"
	const refreshSecret = "refresh-secret"

	access, err := NewAccessToken(accessSecret, "u1", "u1@test.com", 60)
	require.NoError(t, err)
	refresh, err := NewRefreshToken(refreshSecret, "u1", "u1@test.com", 7)
	require.NoError(t, err)

	_, err = VerifyToken(access.Token, refreshSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = VerifyToken(refresh.Token, accessSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// Sanity: each verifies against its own secret.
	_, err = VerifyToken(access.Token, accessSecret)
	assert.NoError(t, err)
	_, err = VerifyToken(refresh.Token, refreshSecret)
	assert.NoError(t, err)
}

func TestVerifyToken_Expired(t *testing.T) {
	t.Parallel()

	// Negative TTL produces a token whose expiry is already in the past;
	// the signature is still valid.
	tok, err := NewAccessToken("secret", "u1", "u1@test.com", -10)
	require.NoError(t, err)

	_, err = VerifyToken(tok.Token, "secret")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyToken_Malformed(t *testing.T) {
	t.Parallel()

	for _, raw := range []string{"", "garbage", "a.b.c"} {
		_, err := VerifyToken(raw, "secret")
		assert.ErrorIs(t, err, ErrInvalidToken, "raw=%q", raw)
	}
}

func TestHashRefreshRaw(t *testing.T) {
	t.Parallel()

	h1 := HashRefreshRaw("some-token")
	h2 := HashRefreshRaw("some-token")
	h3 := HashRefreshRaw("other-token")

	assert.Equal(t, h1, h2)
	assert.NotEqual(t, h1, h3)
	assert.Len(t, h1, 64) // SHA-256 hex
	assert.NotContains(t, h1, "some-token")
}
