package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/tradersfamily/campaign-data-api/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T, models ...any) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(models...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newSessionRepoForTest(t *testing.T) SessionRepository {
	t.Helper()
	return NewSessionRepository(newTestDB(t, &domain.Session{}))
}

func TestUpsertCreatesSingleRowPerUser(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t, &domain.Session{})
	repo := NewSessionRepository(db)

	first, err := repo.Upsert(ctx, 1, domain.RoleSales, "access-1", "refresh-1", time.Now().Add(7*24*time.Hour))
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	second, err := repo.Upsert(ctx, 1, domain.RoleSales, "access-2", "refresh-2", time.Now().Add(7*24*time.Hour))
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if first.SessionID == second.SessionID {
		t.Fatal("expected session id to rotate on re-login")
	}

	var count int64
	if err := db.Model(&domain.Session{}).Where("user_id = ?", 1).Count(&count).Error; err != nil {
		t.Fatalf("count sessions: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected exactly 1 session row, got %d", count)
	}

	// The first device's token is orphaned: lookup now resolves only the
	// latest pair.
	if _, err := repo.FindByAccessToken(ctx, "access-1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected orphaned token lookup to fail, got %v", err)
	}
	s, err := repo.FindByAccessToken(ctx, "access-2")
	if err != nil {
		t.Fatalf("find by current token: %v", err)
	}
	if s.RefreshToken != "refresh-2" {
		t.Fatalf("unexpected refresh token %q", s.RefreshToken)
	}
}

func TestUpsertClearsRevokedFlag(t *testing.T) {
	ctx := context.Background()
	repo := newSessionRepoForTest(t)

	if _, err := repo.Upsert(ctx, 5, domain.RoleAdmin, "a1", "r1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.Revoke(ctx, 5); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	s, err := repo.FindByUserID(ctx, 5)
	if err != nil {
		t.Fatalf("find by user id: %v", err)
	}
	if !s.Revoked || s.LoggedIn {
		t.Fatalf("expected revoked logged-out session, got %+v", s)
	}

	// A fresh login re-activates the same row.
	if _, err := repo.Upsert(ctx, 5, domain.RoleAdmin, "a2", "r2", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("re-login upsert: %v", err)
	}
	s, err = repo.FindByUserID(ctx, 5)
	if err != nil {
		t.Fatalf("find by user id: %v", err)
	}
	if s.Revoked || !s.LoggedIn {
		t.Fatalf("expected active session after re-login, got %+v", s)
	}
	if s.AccessToken != "a2" {
		t.Fatalf("expected rotated access token, got %q", s.AccessToken)
	}
}

func TestRevokeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	repo := newSessionRepoForTest(t)

	if _, err := repo.Upsert(ctx, 9, domain.RoleDeveloper, "a", "r", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.Revoke(ctx, 9); err != nil {
		t.Fatalf("first revoke: %v", err)
	}
	if err := repo.Revoke(ctx, 9); err != nil {
		t.Fatalf("second revoke should be a no-op, got %v", err)
	}
	s, err := repo.FindByUserID(ctx, 9)
	if err != nil {
		t.Fatalf("find by user id: %v", err)
	}
	if !s.Revoked {
		t.Fatal("expected session to stay revoked")
	}
}

func TestUpdateAccessTokenUnknownUser(t *testing.T) {
	ctx := context.Background()
	repo := newSessionRepoForTest(t)
	if err := repo.UpdateAccessToken(ctx, 404, "a"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}
