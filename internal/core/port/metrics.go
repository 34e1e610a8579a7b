package port

import "time"

// RevocationMetrics captures telemetry hooks for revocation checks and
// cleanup cycles. Implementations must be safe for concurrent use.
type RevocationMetrics interface {
	IncRevocation(reason string)
	IncCacheHit()
	IncCacheMiss()
	IncFailClosed()
	ObserveCleanup(deleted int64, cacheSize int, duration time.Duration)
}
