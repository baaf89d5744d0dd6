// Package identity resolves who is calling: a buyer via a signed bearer
// token, or an operator via a shared admin token.
package identity

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

var (
	ErrNoToken      = errors.New("no bearer token")
	ErrInvalidToken = errors.New("invalid bearer token")
)

// BearerToken extracts the credential from an Authorization header value.
func BearerToken(header string) (string, error) {
	fields := strings.Fields(header)
	if len(fields) == 0 {
		return "", ErrNoToken
	}
	if len(fields) != 2 || !strings.EqualFold(fields[0], "bearer") {
		return "", ErrInvalidToken
	}
	return fields[1], nil
}

type BuyerClaims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// BuyerTokens verifies HS256 tokens issued to signed-in buyers.
type BuyerTokens struct {
	secret []byte
}

func NewBuyerTokens(secret string) *BuyerTokens {
	return &BuyerTokens{secret: []byte(secret)}
}

// Verify returns the buyer email carried by the token.
func (b *BuyerTokens) Verify(token string) (string, error) {
	var claims BuyerClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return b.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Email == "" {
		return "", fmt.Errorf("%w: missing email claim", ErrInvalidToken)
	}
	return claims.Email, nil
}

// OperatorToken guards the admin read path. An empty token refuses everyone.
type OperatorToken struct {
	token []byte
}

func NewOperatorToken(token string) *OperatorToken {
	return &OperatorToken{token: []byte(token)}
}

func (o *OperatorToken) Enabled() bool { return len(o.token) > 0 }

func (o *OperatorToken) Allow(authorizationHeader string) bool {
	if !o.Enabled() {
		return false
	}
	got, err := BearerToken(authorizationHeader)
	if err != nil {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(got), o.token) == 1
}
