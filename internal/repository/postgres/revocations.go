package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/yunduan-CloudForge/CF-blog-system-sub001/internal/core/domain"
	"github.com/yunduan-CloudForge/CF-blog-system-sub001/internal/core/port"
	"github.com/yunduan-CloudForge/CF-blog-system-sub001/internal/repository"
)

const revokedTokensTable = "auth.revoked_tokens"

type pgExecutor interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// RevocationRepository implements port.RevocationStore backed by PostgreSQL.
// It is the source of truth for revoked token fingerprints.
type RevocationRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewRevocationRepository constructs a repository backed by any executor that
// satisfies pgExecutor (a pgxpool.Pool in production, pgxmock in tests).
func NewRevocationRepository(exec pgExecutor) *RevocationRepository {
	return &RevocationRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

// InsertIfAbsent persists the record unless one already exists for the same
// fingerprint. ON CONFLICT DO NOTHING keeps re-revocation idempotent: the
// stored expiry and reason are never overwritten.
func (r *RevocationRepository) InsertIfAbsent(ctx context.Context, rec domain.RevocationRecord) (bool, error) {
	if rec.Fingerprint == "" {
		return false, fmt.Errorf("fingerprint is required")
	}

	sql, args, err := r.builder.Insert(revokedTokensTable).
		Columns("fingerprint", "expires_at", "reason", "created_at").
		Values(rec.Fingerprint, rec.ExpiresAt, rec.Reason, rec.CreatedAt).
		Suffix("ON CONFLICT (fingerprint) DO NOTHING").
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build insert revoked token sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, sql, args...)
	if err != nil {
		return false, fmt.Errorf("insert revoked token: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// FindLive returns the record for the fingerprint only while its expiry is in
// the future; expired rows are reported as repository.ErrNotFound even before
// cleanup has deleted them.
func (r *RevocationRepository) FindLive(ctx context.Context, fingerprint string, now time.Time) (*domain.RevocationRecord, error) {
	if fingerprint == "" {
		return nil, fmt.Errorf("fingerprint is required")
	}

	sql, args, err := r.builder.Select("fingerprint", "expires_at", "reason", "created_at").
		From(revokedTokensTable).
		Where(squirrel.Eq{"fingerprint": fingerprint}).
		Where(squirrel.Gt{"expires_at": now}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select revoked token sql: %w", err)
	}

	var rec domain.RevocationRecord
	row := r.exec.QueryRow(ctx, sql, args...)
	if err := row.Scan(&rec.Fingerprint, &rec.ExpiresAt, &rec.Reason, &rec.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select revoked token: %w", err)
	}

	return &rec, nil
}

// ListLive returns every fingerprint whose expiry is still in the future.
func (r *RevocationRepository) ListLive(ctx context.Context, now time.Time) ([]string, error) {
	sql, args, err := r.builder.Select("fingerprint").
		From(revokedTokensTable).
		Where(squirrel.Gt{"expires_at": now}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list revoked tokens sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("list revoked tokens: %w", err)
	}
	defer rows.Close()

	var fingerprints []string
	for rows.Next() {
		var fp string
		if err := rows.Scan(&fp); err != nil {
			return nil, fmt.Errorf("scan revoked token fingerprint: %w", err)
		}
		fingerprints = append(fingerprints, fp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate revoked tokens: %w", err)
	}

	return fingerprints, nil
}

// DeleteExpired removes all records with expires_at <= now and reports how
// many rows were purged.
func (r *RevocationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	sql, args, err := r.builder.Delete(revokedTokensTable).
		Where(squirrel.LtOrEq{"expires_at": now}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete expired tokens sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("delete expired tokens: %w", err)
	}

	return tag.RowsAffected(), nil
}

var _ port.RevocationStore = (*RevocationRepository)(nil)
