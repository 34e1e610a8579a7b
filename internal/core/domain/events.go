package domain

import "time"

// TokenRevokedEvent represents the payload for auth.token.revoked messages.
type TokenRevokedEvent struct {
	EventID     string
	Fingerprint string
	Reason      string
	ExpiresAt   time.Time
	RevokedAt   time.Time
	NewRecord   bool
}
