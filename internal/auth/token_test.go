package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"), 15*time.Minute, 7*24*time.Hour)

	signed, err := issuer.AccessToken(42, "admin")
	require.NoError(t, err)
	require.NotEmpty(t, signed)

	claims, err := issuer.VerifyAccessToken(signed)
	require.NoError(t, err)
	assert.Equal(t, int64(42), claims.UserID)
	assert.Equal(t, "admin", claims.Role)
	assert.NotNil(t, claims.ExpiresAt)
	assert.WithinDuration(t, time.Now().Add(15*time.Minute), claims.ExpiresAt.Time, time.Minute)
}

func TestAccessTokenWrongSecret(t *testing.T) {
	issuer := NewIssuer([]byte("secret-a"), 15*time.Minute, time.Hour)
	other := NewIssuer([]byte("secret-b"), 15*time.Minute, time.Hour)

	signed, err := issuer.AccessToken(1, "user")
	require.NoError(t, err)

	_, err = other.VerifyAccessToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestAccessTokenExpiry(t *testing.T) {
	now := time.Now().UTC()
	issuer := NewIssuer([]byte("test-secret"), 15*time.Minute, time.Hour).
		WithClock(func() time.Time { return now })

	signed, err := issuer.AccessToken(1, "user")
	require.NoError(t, err)

	_, err = issuer.VerifyAccessToken(signed)
	require.NoError(t, err)

	issuer.WithClock(func() time.Time { return now.Add(16 * time.Minute) })
	_, err = issuer.VerifyAccessToken(signed)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseSignedClaimsAcceptsExpired(t *testing.T) {
	now := time.Now().UTC()
	issuer := NewIssuer([]byte("test-secret"), 15*time.Minute, time.Hour).
		WithClock(func() time.Time { return now.Add(-time.Hour) })

	signed, err := issuer.AccessToken(7, "user")
	require.NoError(t, err)

	// Expired for verification...
	issuer.WithClock(func() time.Time { return now })
	_, err = issuer.VerifyAccessToken(signed)
	require.ErrorIs(t, err, ErrInvalidToken)

	// ...but still identifies the subject.
	claims, err := issuer.ParseSignedClaims(signed)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
}

func TestParseSignedClaimsRejectsTampered(t *testing.T) {
	issuer := NewIssuer([]byte("test-secret"), 15*time.Minute, time.Hour)

	signed, err := issuer.AccessToken(7, "user")
	require.NoError(t, err)

	tampered := signed[:len(signed)-4] + "XXXX"
	_, err = issuer.ParseSignedClaims(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewRefreshToken(t *testing.T) {
	raw, digest, err := NewRefreshToken()
	require.NoError(t, err)

	assert.Len(t, raw, refreshTokenBytes*2) // hex-encoded
	assert.Len(t, digest, 64)               // sha256 hex
	assert.Equal(t, DigestToken(raw), digest)
	assert.NotEqual(t, raw, digest)

	raw2, digest2, err := NewRefreshToken()
	require.NoError(t, err)
	assert.NotEqual(t, raw, raw2)
	assert.NotEqual(t, digest, digest2)
}
