package identity

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func issueToken(t *testing.T, secret, email string, ttl time.Duration) string {
	t.Helper()
	now := time.Now()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, BuyerClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return tok
}

func TestBearerToken(t *testing.T) {
	tok, err := BearerToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", tok)

	tok, err = BearerToken("bearer xyz")
	require.NoError(t, err)
	assert.Equal(t, "xyz", tok)

	_, err = BearerToken("")
	assert.ErrorIs(t, err, ErrNoToken)
	_, err = BearerToken("Basic dXNlcjpwYXNz")
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = BearerToken("Bearer")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestBuyerTokens_RoundTrip(t *testing.T) {
	bt := NewBuyerTokens("s3cret")
	tok := issueToken(t, "s3cret", "buyer@example.com", time.Hour)

	email, err := bt.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, "buyer@example.com", email)
}

func TestBuyerTokens_Rejects(t *testing.T) {
	bt := NewBuyerTokens("s3cret")

	expired := issueToken(t, "s3cret", "buyer@example.com", -time.Minute)
	other := issueToken(t, "other", "buyer@example.com", time.Hour)
	noEmail, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "x"}).SignedString([]byte("s3cret"))
	require.NoError(t, err)
	unsigned, err := jwt.NewWithClaims(jwt.SigningMethodNone, BuyerClaims{Email: "buyer@example.com"}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, tok := range map[string]string{
		"expired":      expired,
		"wrong secret": other,
		"no email":     noEmail,
		"alg none":     unsigned,
		"garbage":      "not.a.jwt",
	} {
		_, err := bt.Verify(tok)
		assert.ErrorIs(t, err, ErrInvalidToken, name)
	}
}

func TestOperatorToken(t *testing.T) {
	op := NewOperatorToken("admin-123")
	assert.True(t, op.Enabled())
	assert.True(t, op.Allow("Bearer admin-123"))
	assert.False(t, op.Allow("Bearer admin-124"))
	assert.False(t, op.Allow("admin-123"))
	assert.False(t, op.Allow(""))

	disabled := NewOperatorToken("")
	assert.False(t, disabled.Enabled())
	assert.False(t, disabled.Allow("Bearer "))
	assert.False(t, disabled.Allow("Bearer anything"))
}
