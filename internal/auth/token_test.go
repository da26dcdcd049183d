package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueThenVerify(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)

	token, expiresAt, err := issuer.Issue("alice", "USER", 7)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	sub, err := issuer.Subject(token)
	require.NoError(t, err)
	assert.Equal(t, "alice", sub)

	claims, err := issuer.Verify(token, sub)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Subject)
	assert.Equal(t, "USER", claims.Role)
	assert.Equal(t, uint(7), claims.AccountID)
}

func TestVerifyRejectsExpired(t *testing.T) {
	issuedAt := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	issuer := NewTokenIssuer("secret", 10*time.Hour).WithClock(func() time.Time { return issuedAt })

	token, _, err := issuer.Issue("alice", "USER", 1)
	require.NoError(t, err)

	later := issuer.WithClock(func() time.Time { return issuedAt.Add(10*time.Hour + time.Minute) })
	_, err = later.Verify(token, "alice")
	require.ErrorIs(t, err, ErrInvalidToken)

	earlier := issuer.WithClock(func() time.Time { return issuedAt.Add(9 * time.Hour) })
	_, err = earlier.Verify(token, "alice")
	require.NoError(t, err)
}

func TestVerifyRejectsSubjectMismatch(t *testing.T) {
	issuer := NewTokenIssuer("secret", time.Hour)
	token, _, err := issuer.Issue("alice", "USER", 1)
	require.NoError(t, err)

	_, err = issuer.Verify(token, "mallory")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsForeignSecret(t *testing.T) {
	token, _, err := NewTokenIssuer("other", time.Hour).Issue("alice", "ADMIN", 1)
	require.NoError(t, err)

	_, err = NewTokenIssuer("secret", time.Hour).Verify(token, "alice")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsNoneAlgorithm(t *testing.T) {
	claims := Claims{
		Role: "ADMIN",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "alice",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenIssuer("secret", time.Hour).Verify(token, "alice")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestSubjectRejectsGarbage(t *testing.T) {
	_, err := NewTokenIssuer("secret", time.Hour).Subject("not-a-token")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("pw1")
	require.NoError(t, err)
	assert.NotEqual(t, "pw1", hash)
	assert.True(t, CheckPassword(hash, "pw1"))
	assert.False(t, CheckPassword(hash, "pw2"))
}
