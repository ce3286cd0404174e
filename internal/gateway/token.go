package gateway

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenSigner issues the short-lived bearer tokens gateways require. Each
// token is scoped to a single gateway audience and a few minutes of validity.
type tokenSigner struct {
	secret   []byte
	audience string
	ttl      time.Duration
}

func newTokenSigner(secret, audience string, ttl time.Duration) *tokenSigner {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &tokenSigner{
		secret:   []byte(secret),
		audience: audience,
		ttl:      ttl,
	}
}

func (s *tokenSigner) Sign() (string, error) {
	now := time.Now().UTC()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    "entitle",
		Audience:  jwt.ClaimStrings{s.audience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
	})
	return token.SignedString(s.secret)
}
