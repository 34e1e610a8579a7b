package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/yunduan-CloudForge/CF-blog-system-sub001/internal/core/domain"
	"github.com/yunduan-CloudForge/CF-blog-system-sub001/internal/repository"
)

func TestRevocationRepository_InsertIfAbsent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewRevocationRepository(mock)

	now := time.Date(2025, 11, 2, 12, 0, 0, 0, time.UTC)
	rec := domain.RevocationRecord{
		Fingerprint: "fp-1",
		ExpiresAt:   now.Add(time.Hour),
		Reason:      "logout",
		CreatedAt:   now,
	}

	mock.ExpectExec(`INSERT INTO auth\.revoked_tokens .* ON CONFLICT \(fingerprint\) DO NOTHING`).
		WithArgs(rec.Fingerprint, rec.ExpiresAt, rec.Reason, rec.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	inserted, err := repo.InsertIfAbsent(context.Background(), rec)
	if err != nil {
		t.Fatalf("InsertIfAbsent returned error: %v", err)
	}
	if !inserted {
		t.Fatalf("expected inserted=true for a fresh fingerprint")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRevocationRepository_InsertIfAbsent_Conflict(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewRevocationRepository(mock)

	now := time.Date(2025, 11, 2, 12, 0, 0, 0, time.UTC)
	rec := domain.RevocationRecord{
		Fingerprint: "fp-1",
		ExpiresAt:   now.Add(time.Hour),
		Reason:      "logout",
		CreatedAt:   now,
	}

	// ON CONFLICT DO NOTHING reports zero affected rows for an existing row.
	mock.ExpectExec(`INSERT INTO auth\.revoked_tokens`).
		WithArgs(rec.Fingerprint, rec.ExpiresAt, rec.Reason, rec.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	inserted, err := repo.InsertIfAbsent(context.Background(), rec)
	if err != nil {
		t.Fatalf("InsertIfAbsent returned error: %v", err)
	}
	if inserted {
		t.Fatalf("expected inserted=false when the fingerprint already exists")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRevocationRepository_InsertIfAbsent_EmptyFingerprint(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewRevocationRepository(mock)

	if _, err := repo.InsertIfAbsent(context.Background(), domain.RevocationRecord{}); err == nil {
		t.Fatalf("expected error for empty fingerprint")
	}
}

func TestRevocationRepository_FindLive(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewRevocationRepository(mock)

	now := time.Date(2025, 11, 2, 12, 0, 0, 0, time.UTC)
	expiresAt := now.Add(time.Hour)
	createdAt := now.Add(-time.Minute)

	rows := pgxmock.NewRows([]string{"fingerprint", "expires_at", "reason", "created_at"}).
		AddRow("fp-1", expiresAt, "logout", createdAt)

	mock.ExpectQuery(`SELECT fingerprint, expires_at, reason, created_at FROM auth\.revoked_tokens WHERE fingerprint = \$1 AND expires_at > \$2`).
		WithArgs("fp-1", now).
		WillReturnRows(rows)

	rec, err := repo.FindLive(context.Background(), "fp-1", now)
	if err != nil {
		t.Fatalf("FindLive returned error: %v", err)
	}
	if rec.Fingerprint != "fp-1" || rec.Reason != "logout" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if !rec.ExpiresAt.Equal(expiresAt) {
		t.Fatalf("expected expiry %s, got %s", expiresAt, rec.ExpiresAt)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRevocationRepository_FindLive_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewRevocationRepository(mock)

	now := time.Date(2025, 11, 2, 12, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT fingerprint, expires_at, reason, created_at FROM auth\.revoked_tokens`).
		WithArgs("fp-404", now).
		WillReturnRows(pgxmock.NewRows([]string{"fingerprint", "expires_at", "reason", "created_at"}))

	_, err = repo.FindLive(context.Background(), "fp-404", now)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRevocationRepository_ListLive(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewRevocationRepository(mock)

	now := time.Date(2025, 11, 2, 12, 0, 0, 0, time.UTC)

	rows := pgxmock.NewRows([]string{"fingerprint"}).
		AddRow("fp-1").
		AddRow("fp-2")

	mock.ExpectQuery(`SELECT fingerprint FROM auth\.revoked_tokens WHERE expires_at > \$1`).
		WithArgs(now).
		WillReturnRows(rows)

	fingerprints, err := repo.ListLive(context.Background(), now)
	if err != nil {
		t.Fatalf("ListLive returned error: %v", err)
	}
	if len(fingerprints) != 2 {
		t.Fatalf("expected 2 fingerprints, got %d", len(fingerprints))
	}
	if fingerprints[0] != "fp-1" || fingerprints[1] != "fp-2" {
		t.Fatalf("unexpected fingerprints: %v", fingerprints)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestRevocationRepository_DeleteExpired(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewRevocationRepository(mock)

	now := time.Date(2025, 11, 2, 12, 0, 0, 0, time.UTC)

	mock.ExpectExec(`DELETE FROM auth\.revoked_tokens WHERE expires_at <= \$1`).
		WithArgs(now).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	deleted, err := repo.DeleteExpired(context.Background(), now)
	if err != nil {
		t.Fatalf("DeleteExpired returned error: %v", err)
	}
	if deleted != 3 {
		t.Fatalf("expected 3 deleted rows, got %d", deleted)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
