package domain

import (
	"strings"
	"time"
)

// Well-known revocation reasons. Reasons are informational only and never
// affect membership decisions.
const (
	ReasonLogout         = "logout"
	ReasonAdminRevoke    = "admin_revoke"
	ReasonPasswordChange = "password_change"
)

// RevocationRecord marks a session token as revoked until its natural expiry.
// Records are immutable once written; re-revoking the same fingerprint is an
// idempotent no-op and does not extend ExpiresAt.
type RevocationRecord struct {
	Fingerprint string
	ExpiresAt   time.Time
	Reason      string
	CreatedAt   time.Time
}

// IsExpired reports whether the record is semantically void at the given
// instant, even if it has not been physically deleted yet.
func (r RevocationRecord) IsExpired(at time.Time) bool {
	return !r.ExpiresAt.After(at)
}

// NormalizeReason trims the supplied reason and falls back to admin_revoke
// when empty, keeping stored classifications consistent.
func NormalizeReason(reason string) string {
	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		return ReasonAdminRevoke
	}
	return strings.ToLower(strings.ReplaceAll(trimmed, " ", "_"))
}
