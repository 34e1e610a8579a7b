package security

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiryHint extracts the exp claim from a JWT-shaped token without verifying
// its signature, so logout-initiated revocations can default the record expiry
// to the token's natural lifetime. Verification stays with the issuing layer;
// a bogus exp only shortens or lengthens how long the blacklist entry lives,
// never whether it takes effect.
//
// Returns fallback when the token is not a parseable JWT or carries no exp.
func ExpiryHint(rawToken string, fallback time.Time) time.Time {
	parser := jwt.NewParser()

	claims := jwt.MapClaims{}
	if _, _, err := parser.ParseUnverified(rawToken, claims); err != nil {
		return fallback
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return fallback
	}

	return exp.Time
}
