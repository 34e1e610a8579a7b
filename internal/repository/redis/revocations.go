package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	red "github.com/redis/go-redis/v9"

	"github.com/yunduan-CloudForge/CF-blog-system-sub001/internal/core/domain"
	"github.com/yunduan-CloudForge/CF-blog-system-sub001/internal/core/port"
	"github.com/yunduan-CloudForge/CF-blog-system-sub001/internal/repository"
)

const defaultRevocationPrefix = "auth:revoked"

// RevocationRepository implements port.RevocationStore on Redis for
// deployments that run without PostgreSQL. Each fingerprint owns a record key
// expiring with the revocation, and a companion zset scored by expiry unix
// time serves the range queries (ListLive, DeleteExpired).
type RevocationRepository struct {
	client *red.Client
	prefix string
}

// NewRevocationRepository wires a Redis client into a revocation store.
func NewRevocationRepository(client *red.Client, keyPrefix string) *RevocationRepository {
	prefix := strings.TrimSpace(keyPrefix)
	if prefix == "" {
		prefix = defaultRevocationPrefix
	}

	return &RevocationRepository{client: client, prefix: prefix}
}

type revocationPayload struct {
	Reason    string    `json:"reason"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// InsertIfAbsent stores the record under SETNX semantics so re-revocation
// never overwrites the original expiry or reason.
func (r *RevocationRepository) InsertIfAbsent(ctx context.Context, rec domain.RevocationRecord) (bool, error) {
	if rec.Fingerprint == "" {
		return false, fmt.Errorf("fingerprint is required")
	}

	ttl := time.Until(rec.ExpiresAt)
	if ttl <= 0 {
		// Already expired on arrival: keep the key around briefly so the
		// index entry and record stay consistent until the next cleanup.
		ttl = time.Minute
	}

	payload, err := json.Marshal(revocationPayload{
		Reason:    rec.Reason,
		ExpiresAt: rec.ExpiresAt.UTC(),
		CreatedAt: rec.CreatedAt.UTC(),
	})
	if err != nil {
		return false, fmt.Errorf("encode revocation payload: %w", err)
	}

	inserted, err := r.client.SetNX(ctx, r.recordKey(rec.Fingerprint), payload, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx revoked token: %w", err)
	}
	if !inserted {
		return false, nil
	}

	if err := r.client.ZAdd(ctx, r.indexKey(), red.Z{
		Score:  float64(rec.ExpiresAt.Unix()),
		Member: rec.Fingerprint,
	}).Err(); err != nil {
		return false, fmt.Errorf("redis index revoked token: %w", err)
	}

	return true, nil
}

// FindLive returns the record while its expiry is in the future, or
// repository.ErrNotFound otherwise.
func (r *RevocationRepository) FindLive(ctx context.Context, fingerprint string, now time.Time) (*domain.RevocationRecord, error) {
	if fingerprint == "" {
		return nil, fmt.Errorf("fingerprint is required")
	}

	data, err := r.client.Get(ctx, r.recordKey(fingerprint)).Bytes()
	if err != nil {
		if errors.Is(err, red.Nil) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("redis get revoked token: %w", err)
	}

	var payload revocationPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("decode revocation payload: %w", err)
	}

	if !payload.ExpiresAt.After(now) {
		return nil, repository.ErrNotFound
	}

	return &domain.RevocationRecord{
		Fingerprint: fingerprint,
		ExpiresAt:   payload.ExpiresAt,
		Reason:      payload.Reason,
		CreatedAt:   payload.CreatedAt,
	}, nil
}

// ListLive returns every fingerprint whose indexed expiry is after now.
func (r *RevocationRepository) ListLive(ctx context.Context, now time.Time) ([]string, error) {
	members, err := r.client.ZRangeByScore(ctx, r.indexKey(), &red.ZRangeBy{
		Min: fmt.Sprintf("(%d", now.Unix()),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list live revocations: %w", err)
	}

	return members, nil
}

// DeleteExpired drops record keys and index entries whose expiry has passed.
// Redis evicts the record keys on its own via TTL; this keeps the zset index
// bounded as well.
func (r *RevocationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	cutoff := fmt.Sprintf("%d", now.Unix())

	expired, err := r.client.ZRangeByScore(ctx, r.indexKey(), &red.ZRangeBy{
		Min: "-inf",
		Max: cutoff,
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("redis list expired revocations: %w", err)
	}
	if len(expired) == 0 {
		return 0, nil
	}

	keys := make([]string, 0, len(expired))
	for _, fp := range expired {
		keys = append(keys, r.recordKey(fp))
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return 0, fmt.Errorf("redis delete expired revocations: %w", err)
	}

	if err := r.client.ZRemRangeByScore(ctx, r.indexKey(), "-inf", cutoff).Err(); err != nil {
		return 0, fmt.Errorf("redis trim revocation index: %w", err)
	}

	return int64(len(expired)), nil
}

func (r *RevocationRepository) recordKey(fingerprint string) string {
	return fmt.Sprintf("%s:rec:%s", r.prefix, fingerprint)
}

func (r *RevocationRepository) indexKey() string {
	return fmt.Sprintf("%s:by_expiry", r.prefix)
}

var _ port.RevocationStore = (*RevocationRepository)(nil)
