// Package auth handles the bearer tokens presented to the remote document
// database. Verification happens server-side; this layer only fails fast on
// tokens that are malformed or already expired.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

// Claims carries the registered claims plus the owner realm the token was
// issued for.
type Claims struct {
	jwt.RegisteredClaims
	Owner string `json:"owner"`
}

// ParseClaims decodes the token without verifying its signature.
func ParseClaims(tokenString string) (*Claims, error) {
	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithoutClaimsValidation())
	if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}
	return claims, nil
}

// Check returns nil when the token is well-formed and not expired at the
// given instant. Tokens without an expiry claim never expire client-side.
func Check(tokenString string, now time.Time) error {
	claims, err := ParseClaims(tokenString)
	if err != nil {
		return err
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(now) {
		return ErrTokenExpired
	}
	return nil
}

// GenerateToken issues an HS256 token for the given owner realm. Used by
// tests and local development tooling; production tokens come from the
// account service.
func GenerateToken(owner string, secretKey []byte, validity time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validity)),
		},
		Owner: owner,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}
