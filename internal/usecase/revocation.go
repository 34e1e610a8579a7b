package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/yunduan-CloudForge/CF-blog-system-sub001/internal/core/domain"
	"github.com/yunduan-CloudForge/CF-blog-system-sub001/internal/core/port"
	"github.com/yunduan-CloudForge/CF-blog-system-sub001/internal/infra/security"
	"github.com/yunduan-CloudForge/CF-blog-system-sub001/internal/repository"
)

// RevocationService orchestrates revoke/check operations across the
// fingerprinter, the durable store, and the membership cache.
//
// Consistency contract: the cache is a possibly-stale subset of the store's
// live records. Revoke persists before caching, so no cache entry ever exists
// without store backing; IsRevoked falls through to the store on a miss, so a
// lagging cache only costs a round-trip, never a wrong answer.
type RevocationService struct {
	store   port.RevocationStore
	cache   port.MembershipCache
	events  port.EventPublisher
	metrics port.RevocationMetrics
	logger  *zap.Logger

	storeTimeout time.Duration
	now          func() time.Time
}

// NewRevocationService constructs a RevocationService instance. events and
// metrics may be nil.
func NewRevocationService(
	store port.RevocationStore,
	cache port.MembershipCache,
	events port.EventPublisher,
	metrics port.RevocationMetrics,
	storeTimeout time.Duration,
	logger *zap.Logger,
) *RevocationService {
	if logger == nil {
		logger = zap.NewNop()
	}

	service := &RevocationService{
		store:        store,
		cache:        cache,
		events:       events,
		metrics:      metrics,
		storeTimeout: storeTimeout,
		logger:       logger,
	}
	service.now = func() time.Time { return time.Now().UTC() }
	return service
}

// WithClock overrides the service clock for deterministic tests.
func (s *RevocationService) WithClock(clock func() time.Time) *RevocationService {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Revoke persists a revocation record for the raw token and publishes it to
// the membership cache. A store failure fails the whole operation and leaves
// the cache untouched: callers must not assume a token is revoked unless
// Revoke returns nil.
//
// Re-revoking an already-revoked, not-yet-expired token is an idempotent
// no-op; the stored expiry and reason are deliberately not extended or
// overwritten (insert-if-absent semantics).
func (s *RevocationService) Revoke(ctx context.Context, rawToken string, expiresAt time.Time, reason string) error {
	fingerprint, err := security.Fingerprint(rawToken)
	if err != nil {
		return err
	}

	now := s.now()
	rec := domain.RevocationRecord{
		Fingerprint: fingerprint,
		ExpiresAt:   expiresAt.UTC(),
		Reason:      domain.NormalizeReason(reason),
		CreatedAt:   now,
	}

	storeCtx, cancel := s.boundContext(ctx)
	defer cancel()

	inserted, err := s.store.InsertIfAbsent(storeCtx, rec)
	if err != nil {
		return fmt.Errorf("persist revocation: %w", err)
	}

	s.cache.Add(fingerprint)

	if s.metrics != nil {
		s.metrics.IncRevocation(rec.Reason)
	}

	if s.events != nil {
		event := domain.TokenRevokedEvent{
			EventID:     uuid.NewString(),
			Fingerprint: fingerprint,
			Reason:      rec.Reason,
			ExpiresAt:   rec.ExpiresAt,
			RevokedAt:   now,
			NewRecord:   inserted,
		}
		if err := s.events.PublishTokenRevoked(ctx, event); err != nil {
			s.logger.Warn("publish token revoked event failed",
				zap.String("reason", rec.Reason),
				zap.Error(err),
			)
		}
	}

	return nil
}

// IsRevoked reports whether the raw token has been revoked. Cache hits are
// answered without touching the store; misses consult the store and self-heal
// the cache on a confirmed-live record.
//
// The check must always yield a boolean for the request pipeline, so store
// failures are converted to a policy decision instead of propagating: the
// service fails closed, treating an unverifiable token as revoked.
func (s *RevocationService) IsRevoked(ctx context.Context, rawToken string) bool {
	fingerprint, err := security.Fingerprint(rawToken)
	if err != nil {
		return true
	}

	if s.cache.Contains(fingerprint) {
		if s.metrics != nil {
			s.metrics.IncCacheHit()
		}
		return true
	}
	if s.metrics != nil {
		s.metrics.IncCacheMiss()
	}

	storeCtx, cancel := s.boundContext(ctx)
	defer cancel()

	rec, err := s.store.FindLive(storeCtx, fingerprint, s.now())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false
		}
		if s.metrics != nil {
			s.metrics.IncFailClosed()
		}
		s.logger.Error("revocation check store failure, failing closed", zap.Error(err))
		return true
	}

	s.cache.Add(rec.Fingerprint)
	return true
}

func (s *RevocationService) boundContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.storeTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.storeTimeout)
}
