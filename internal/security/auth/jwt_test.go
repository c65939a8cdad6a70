package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krishisakhi/backend/internal/domain"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", "krishisakhi", 0)

	tok, err := tm.Issue(42)
	require.NoError(t, err)
	assert.NotEmpty(t, tok.Value)
	assert.WithinDuration(t, time.Now().Add(DefaultTokenTTL), tok.ExpiresAt, 2*time.Second)

	id, err := tm.Verify(tok.Value)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestIssueRejectsMissingFarmer(t *testing.T) {
	tm := NewTokenManager("secret", "", 0)
	_, err := tm.Issue(0)
	assert.Error(t, err)
}

func TestVerifyExpired(t *testing.T) {
	tm := NewTokenManager("secret", "krishisakhi", time.Hour)
	tm.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	tok, err := tm.Issue(7)
	require.NoError(t, err)

	tm.now = time.Now
	_, err = tm.Verify(tok.Value)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
}

func TestVerifyWrongSecret(t *testing.T) {
	tok, err := NewTokenManager("secret-a", "krishisakhi", 0).Issue(7)
	require.NoError(t, err)

	_, err = NewTokenManager("secret-b", "krishisakhi", 0).Verify(tok.Value)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerifyWrongIssuer(t *testing.T) {
	tok, err := NewTokenManager("secret", "someone-else", 0).Issue(7)
	require.NoError(t, err)

	_, err = NewTokenManager("secret", "krishisakhi", 0).Verify(tok.Value)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerifyGarbage(t *testing.T) {
	tm := NewTokenManager("secret", "krishisakhi", 0)
	_, err := tm.Verify("not-a-token")
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestVerifyMalformedSubject(t *testing.T) {
	tm := NewTokenManager("secret", "krishisakhi", 0)
	for _, sub := range []string{"farmer-7", "", "-3"} {
		claims := jwt.RegisteredClaims{
			Subject:   sub,
			Issuer:    "krishisakhi",
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}
		signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("secret"))
		require.NoError(t, err)

		_, err = tm.Verify(signed)
		assert.ErrorIs(t, err, domain.ErrMalformedSubject, "subject %q", sub)
	}
}

func TestVerifyRejectsNoneAlgorithm(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "7",
		Issuer:    "krishisakhi",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = NewTokenManager("secret", "krishisakhi", 0).Verify(signed)
	assert.ErrorIs(t, err, domain.ErrInvalidToken)
}

func TestExtractToken(t *testing.T) {
	tok, err := ExtractToken("Bearer abc.def.ghi")
	require.NoError(t, err)
	assert.Equal(t, "abc.def.ghi", tok)

	tok, err = ExtractToken("bearer   xyz")
	require.NoError(t, err)
	assert.Equal(t, "xyz", tok)

	for _, bad := range []string{"", "Bearer", "Basic abc", "Bearer a b"} {
		_, err := ExtractToken(bad)
		assert.Error(t, err, "header %q", bad)
	}
}
