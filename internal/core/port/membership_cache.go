package port

// MembershipCache is the in-process set of currently-known-revoked
// fingerprints consulted on the request hot path. A cache hit is always a
// correct positive; a miss falls through to the durable store. The cache has
// no eviction policy of its own: expired fingerprints leave it only through
// ReplaceAll during a scheduler rebuild.
type MembershipCache interface {
	Contains(fingerprint string) bool
	Add(fingerprint string)
	// ReplaceAll atomically swaps the whole set. Readers never observe a
	// partially rebuilt set.
	ReplaceAll(fingerprints []string)
	Len() int
}
