package security

import (
	"sync"

	"github.com/yunduan-CloudForge/CF-blog-system-sub001/internal/core/port"
)

// MembershipCache is an in-memory set of revoked token fingerprints used to
// avoid a store round-trip on the request hot path.
//
// The cache carries no size bound or per-entry expiry: a missing entry is safe
// (the check falls through to the store), while a stale-present entry would be
// incorrect. Removing expired fingerprints is therefore the job of the
// periodic full rebuild via ReplaceAll, not of incremental pruning.
type MembershipCache struct {
	mu      sync.RWMutex
	entries map[string]struct{}
}

// NewMembershipCache constructs an empty fingerprint set.
func NewMembershipCache() *MembershipCache {
	return &MembershipCache{entries: make(map[string]struct{})}
}

// Contains reports whether the fingerprint is currently known revoked.
func (c *MembershipCache) Contains(fingerprint string) bool {
	c.mu.RLock()
	_, ok := c.entries[fingerprint]
	c.mu.RUnlock()
	return ok
}

// Add records a single revoked fingerprint.
func (c *MembershipCache) Add(fingerprint string) {
	if fingerprint == "" {
		return
	}
	c.mu.Lock()
	c.entries[fingerprint] = struct{}{}
	c.mu.Unlock()
}

// ReplaceAll swaps the whole set for the supplied fingerprints. The new set is
// built outside the lock and swapped by reference, so readers never observe a
// partially rebuilt set.
func (c *MembershipCache) ReplaceAll(fingerprints []string) {
	next := make(map[string]struct{}, len(fingerprints))
	for _, fp := range fingerprints {
		if fp == "" {
			continue
		}
		next[fp] = struct{}{}
	}

	c.mu.Lock()
	c.entries = next
	c.mu.Unlock()
}

// Len returns the current number of cached fingerprints.
func (c *MembershipCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

var _ port.MembershipCache = (*MembershipCache)(nil)
