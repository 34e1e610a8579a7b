package usecase

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/yunduan-CloudForge/CF-blog-system-sub001/internal/core/port"
)

// EvictionSchedulerOptions controls cleanup cadence and startup warm-up.
type EvictionSchedulerOptions struct {
	Interval time.Duration
	Warmup   bool
}

// EvictionScheduler periodically purges expired revocation records from the
// store and rebuilds the membership cache from the surviving ones. It owns no
// implicit timers: Start and Stop are explicit, and RunOnce can be driven
// directly in tests.
type EvictionScheduler struct {
	store   port.RevocationStore
	cache   port.MembershipCache
	metrics port.RevocationMetrics
	logger  *zap.Logger

	interval time.Duration
	warmup   bool

	ticking atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	now     func() time.Time
}

// NewEvictionScheduler constructs a scheduler. metrics may be nil.
func NewEvictionScheduler(
	store port.RevocationStore,
	cache port.MembershipCache,
	metrics port.RevocationMetrics,
	logger *zap.Logger,
	opts EvictionSchedulerOptions,
) *EvictionScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = time.Hour
	}

	scheduler := &EvictionScheduler{
		store:    store,
		cache:    cache,
		metrics:  metrics,
		logger:   logger,
		interval: interval,
		warmup:   opts.Warmup,
	}
	scheduler.now = func() time.Time { return time.Now().UTC() }
	return scheduler
}

// WithClock overrides the scheduler clock for deterministic tests.
func (s *EvictionScheduler) WithClock(clock func() time.Time) *EvictionScheduler {
	if clock != nil {
		s.now = clock
	}
	return s
}

// Start runs an eager warm-up tick when configured, then launches the
// periodic loop. It returns immediately; Stop cancels the loop and waits for
// any in-flight tick to finish.
func (s *EvictionScheduler) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	if s.warmup {
		s.RunOnce(runCtx)
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.RunOnce(runCtx)
			case <-runCtx.Done():
				return
			}
		}
	}()

	s.logger.Info("eviction scheduler started",
		zap.Duration("interval", s.interval),
		zap.Bool("warmup", s.warmup),
	)
}

// Stop cancels the periodic loop and blocks until it has exited.
func (s *EvictionScheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.wg.Wait()
}

// RunOnce performs a single cleanup tick: delete expired records, then
// rebuild the cache from the store's live listing. Re-entrant ticks are
// skipped so two rebuilds never interleave. All failures are swallowed and
// logged; a missed cycle self-corrects on the next one.
func (s *EvictionScheduler) RunOnce(ctx context.Context) {
	if !s.ticking.CompareAndSwap(false, true) {
		s.logger.Debug("cleanup tick already running, skipping")
		return
	}
	defer s.ticking.Store(false)

	started := time.Now()
	now := s.now()

	deleted, err := s.store.DeleteExpired(ctx, now)
	if err != nil {
		// The rebuild below still runs: bounding cache growth does not
		// depend on the physical purge succeeding.
		s.logger.Error("delete expired revocations failed", zap.Error(err))
	}

	fingerprints, err := s.store.ListLive(ctx, now)
	if err != nil {
		// Keep the prior cache contents; swapping to empty on error would
		// turn a store outage into a flood of misses.
		s.logger.Error("list live revocations failed, keeping previous cache", zap.Error(err))
		return
	}

	s.cache.ReplaceAll(fingerprints)

	if s.metrics != nil {
		s.metrics.ObserveCleanup(deleted, s.cache.Len(), time.Since(started))
	}

	s.logger.Debug("cleanup tick finished",
		zap.Int64("deleted", deleted),
		zap.Int("cache_size", s.cache.Len()),
	)
}
