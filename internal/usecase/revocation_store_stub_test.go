package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/yunduan-CloudForge/CF-blog-system-sub001/internal/core/domain"
	"github.com/yunduan-CloudForge/CF-blog-system-sub001/internal/core/port"
	"github.com/yunduan-CloudForge/CF-blog-system-sub001/internal/repository"
)

// stubRevocationStore is an in-memory port.RevocationStore with injectable
// failures and call counters.
type stubRevocationStore struct {
	mu      sync.Mutex
	records map[string]domain.RevocationRecord

	insertErr error
	findErr   error
	listErr   error
	deleteErr error

	findCalls   int
	listCalls   int
	deleteCalls int

	// listGate, when set, blocks ListLive until the channel is closed. Used
	// to simulate a slow store listing during a cleanup tick.
	listGate chan struct{}
}

func newStubRevocationStore() *stubRevocationStore {
	return &stubRevocationStore{records: make(map[string]domain.RevocationRecord)}
}

func (s *stubRevocationStore) InsertIfAbsent(_ context.Context, rec domain.RevocationRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.insertErr != nil {
		return false, s.insertErr
	}
	if _, exists := s.records[rec.Fingerprint]; exists {
		return false, nil
	}
	s.records[rec.Fingerprint] = rec
	return true, nil
}

func (s *stubRevocationStore) FindLive(_ context.Context, fingerprint string, now time.Time) (*domain.RevocationRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.findCalls++
	if s.findErr != nil {
		return nil, s.findErr
	}

	rec, exists := s.records[fingerprint]
	if !exists || rec.IsExpired(now) {
		return nil, repository.ErrNotFound
	}

	copied := rec
	return &copied, nil
}

func (s *stubRevocationStore) ListLive(_ context.Context, now time.Time) ([]string, error) {
	s.mu.Lock()
	gate := s.listGate
	s.listCalls++
	if s.listErr != nil {
		s.mu.Unlock()
		return nil, s.listErr
	}
	s.mu.Unlock()

	if gate != nil {
		<-gate
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var fingerprints []string
	for fp, rec := range s.records {
		if !rec.IsExpired(now) {
			fingerprints = append(fingerprints, fp)
		}
	}
	return fingerprints, nil
}

func (s *stubRevocationStore) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.deleteCalls++
	if s.deleteErr != nil {
		return 0, s.deleteErr
	}

	var deleted int64
	for fp, rec := range s.records {
		if rec.IsExpired(now) {
			delete(s.records, fp)
			deleted++
		}
	}
	return deleted, nil
}

func (s *stubRevocationStore) liveCount(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, rec := range s.records {
		if !rec.IsExpired(now) {
			count++
		}
	}
	return count
}

var _ port.RevocationStore = (*stubRevocationStore)(nil)

// stubEventPublisher records published revocation events.
type stubEventPublisher struct {
	mu     sync.Mutex
	events []domain.TokenRevokedEvent
	err    error
}

func (p *stubEventPublisher) PublishTokenRevoked(_ context.Context, event domain.TokenRevokedEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func (p *stubEventPublisher) published() []domain.TokenRevokedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]domain.TokenRevokedEvent(nil), p.events...)
}

var _ port.EventPublisher = (*stubEventPublisher)(nil)

// stubMetrics counts telemetry hook invocations.
type stubMetrics struct {
	mu          sync.Mutex
	revocations map[string]int
	cacheHits   int
	cacheMisses int
	failClosed  int
	cleanups    int
}

func newStubMetrics() *stubMetrics {
	return &stubMetrics{revocations: make(map[string]int)}
}

func (m *stubMetrics) IncRevocation(reason string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revocations[reason]++
}

func (m *stubMetrics) IncCacheHit() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheHits++
}

func (m *stubMetrics) IncCacheMiss() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cacheMisses++
}

func (m *stubMetrics) IncFailClosed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failClosed++
}

func (m *stubMetrics) ObserveCleanup(int64, int, time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cleanups++
}

var _ port.RevocationMetrics = (*stubMetrics)(nil)
