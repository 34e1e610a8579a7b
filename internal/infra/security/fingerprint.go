package security

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
)

// ErrEmptyToken is returned when a fingerprint is requested for a blank token.
var ErrEmptyToken = errors.New("security: token must not be empty")

// Fingerprint maps a raw session token to a fixed-length opaque identifier so
// raw tokens are never persisted. SHA-256, hex encoded: 64 characters,
// deterministic, irreversible.
func Fingerprint(rawToken string) (string, error) {
	if strings.TrimSpace(rawToken) == "" {
		return "", ErrEmptyToken
	}

	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:]), nil
}
