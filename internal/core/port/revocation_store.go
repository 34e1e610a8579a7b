package port

import (
	"context"
	"time"

	"github.com/yunduan-CloudForge/CF-blog-system-sub001/internal/core/domain"
)

// RevocationStore is the durable source of truth for revoked token
// fingerprints. Implementations must treat records with expires_at <= now as
// absent for FindLive and ListLive, even before DeleteExpired has run.
type RevocationStore interface {
	// InsertIfAbsent persists the record unless one already exists for the
	// same fingerprint. Returns whether a new record was actually created;
	// a duplicate insert is a successful no-op, never an error.
	InsertIfAbsent(ctx context.Context, rec domain.RevocationRecord) (bool, error)

	// FindLive returns the record for the fingerprint when its expiry is
	// still in the future, or repository.ErrNotFound otherwise.
	FindLive(ctx context.Context, fingerprint string, now time.Time) (*domain.RevocationRecord, error)

	// ListLive returns every fingerprint whose expiry is still in the future.
	ListLive(ctx context.Context, now time.Time) ([]string, error)

	// DeleteExpired removes all records with expires_at <= now and reports
	// how many were deleted.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
