package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/tradersfamily/campaign-data-api/internal/domain"
	"github.com/tradersfamily/campaign-data-api/internal/repository"
	"github.com/tradersfamily/campaign-data-api/internal/security"
	"gorm.io/gorm"
)

type inMemorySessionRepo struct {
	mu     sync.Mutex
	nextID uint
	byUser map[uint]*domain.Session
}

func newInMemorySessionRepo() *inMemorySessionRepo {
	return &inMemorySessionRepo{nextID: 1, byUser: map[uint]*domain.Session{}}
}

func (r *inMemorySessionRepo) FindByUserID(_ context.Context, userID uint) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byUser[userID]
	if !ok {
		return nil, repository.ErrSessionNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *inMemorySessionRepo) FindByAccessToken(_ context.Context, accessToken string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.byUser {
		if s.AccessToken == accessToken {
			cp := *s
			return &cp, nil
		}
	}
	return nil, repository.ErrSessionNotFound
}

func (r *inMemorySessionRepo) Upsert(_ context.Context, userID uint, role domain.Role, accessToken, refreshToken string, expiresAt time.Time) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now().UTC()
	s, ok := r.byUser[userID]
	if !ok {
		s = &domain.Session{ID: r.nextID, UserID: userID, CreatedAt: now}
		r.nextID++
		r.byUser[userID] = s
	}
	s.SessionID = uuid.NewString()
	s.Role = role
	s.LoggedIn = true
	s.AccessToken = accessToken
	s.RefreshToken = refreshToken
	s.ExpiresAt = expiresAt
	s.Revoked = false
	s.UpdatedAt = now
	cp := *s
	return &cp, nil
}

func (r *inMemorySessionRepo) UpdateAccessToken(_ context.Context, userID uint, accessToken string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byUser[userID]
	if !ok {
		return repository.ErrSessionNotFound
	}
	s.AccessToken = accessToken
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *inMemorySessionRepo) Revoke(_ context.Context, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.byUser[userID]; ok {
		s.Revoked = true
		s.LoggedIn = false
	}
	return nil
}

func (r *inMemorySessionRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byUser)
}

type inMemoryUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*domain.User
}

func newInMemoryUserRepo() *inMemoryUserRepo {
	return &inMemoryUserRepo{nextID: 1, users: map[uint]*domain.User{}}
}

func (r *inMemoryUserRepo) FindByID(_ context.Context, id uint) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok || u.DeletedAt.Valid {
		return nil, repository.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *inMemoryUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email && !u.DeletedAt.Valid {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *inMemoryUserRepo) FindByEmailAny(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var deleted *domain.User
	for _, u := range r.users {
		if u.Email != email {
			continue
		}
		if !u.DeletedAt.Valid {
			cp := *u
			return &cp, nil
		}
		deleted = u
	}
	if deleted != nil {
		cp := *deleted
		return &cp, nil
	}
	return nil, repository.ErrUserNotFound
}

func (r *inMemoryUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email && !u.DeletedAt.Valid {
			return repository.ErrDuplicateEmail
		}
	}
	user.ID = r.nextID
	r.nextID++
	cp := *user
	r.users[cp.ID] = &cp
	return nil
}

func (r *inMemoryUserRepo) Update(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *user
	r.users[cp.ID] = &cp
	return nil
}

func (r *inMemoryUserRepo) SoftDelete(_ context.Context, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.DeletedAt = gorm.DeletedAt{Time: time.Now().UTC(), Valid: true}
	return nil
}

func newCodecForTest() *security.TokenCodec {
	return security.NewTokenCodec(
		"campaign-data-api",
		"abcdefghijklmnopqrstuvwxyz123456",
		"abcdefghijklmnopqrstuvwxyz654321",
	)
}

func TestIssuePersistsExactlyOneSession(t *testing.T) {
	ctx := context.Background()
	repo := newInMemorySessionRepo()
	svc := NewTokenService(newCodecForTest(), repo, 15*time.Minute, 7*24*time.Hour)

	pair, err := svc.Issue(ctx, 1, domain.RoleSales)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected non-empty token pair")
	}
	if repo.count() != 1 {
		t.Fatalf("expected 1 session row, got %d", repo.count())
	}

	// A second login supersedes the pair in the same row.
	pair2, err := svc.Issue(ctx, 1, domain.RoleSales)
	if err != nil {
		t.Fatalf("second issue: %v", err)
	}
	if repo.count() != 1 {
		t.Fatalf("expected 1 session row after re-login, got %d", repo.count())
	}
	if _, err := repo.FindByAccessToken(ctx, pair.AccessToken); !errors.Is(err, repository.ErrSessionNotFound) {
		t.Fatalf("expected first access token to be orphaned, got %v", err)
	}
	if _, err := repo.FindByAccessToken(ctx, pair2.AccessToken); err != nil {
		t.Fatalf("expected second access token to resolve, got %v", err)
	}
}

func TestRefreshMintsNewAccessToken(t *testing.T) {
	ctx := context.Background()
	repo := newInMemorySessionRepo()
	svc := NewTokenService(newCodecForTest(), repo, 15*time.Minute, 7*24*time.Hour)

	pair, err := svc.Issue(ctx, 3, domain.RoleAdmin)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	access, err := svc.Refresh(ctx, pair.RefreshToken)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if access == pair.AccessToken {
		t.Fatal("expected a new access token")
	}
	s, err := repo.FindByUserID(ctx, 3)
	if err != nil {
		t.Fatalf("find session: %v", err)
	}
	if s.AccessToken != access {
		t.Fatal("expected session row to carry the new access token")
	}
	if s.RefreshToken != pair.RefreshToken {
		t.Fatal("refresh token must not rotate on refresh")
	}
}

func TestRefreshRevokedSession(t *testing.T) {
	ctx := context.Background()
	repo := newInMemorySessionRepo()
	svc := NewTokenService(newCodecForTest(), repo, 15*time.Minute, 7*24*time.Hour)

	pair, err := svc.Issue(ctx, 4, domain.RoleSales)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := svc.Revoke(ctx, 4); err != nil {
		t.Fatalf("revoke: %v", err)
	}
	if _, err := svc.Refresh(ctx, pair.RefreshToken); !errors.Is(err, ErrSessionRevoked) {
		t.Fatalf("expected ErrSessionRevoked, got %v", err)
	}
}

func TestRefreshWithoutSessionRow(t *testing.T) {
	ctx := context.Background()
	svc := NewTokenService(newCodecForTest(), newInMemorySessionRepo(), 15*time.Minute, 7*24*time.Hour)

	refresh, err := newCodecForTest().SignRefreshToken(99, time.Hour)
	if err != nil {
		t.Fatalf("sign refresh: %v", err)
	}
	if _, err := svc.Refresh(ctx, refresh); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRefreshRejectsBadTokens(t *testing.T) {
	ctx := context.Background()
	svc := NewTokenService(newCodecForTest(), newInMemorySessionRepo(), 15*time.Minute, 7*24*time.Hour)

	if _, err := svc.Refresh(ctx, "garbage"); !errors.Is(err, security.ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed, got %v", err)
	}
	expired, err := newCodecForTest().SignRefreshToken(1, -time.Minute)
	if err != nil {
		t.Fatalf("sign refresh: %v", err)
	}
	if _, err := svc.Refresh(ctx, expired); !errors.Is(err, security.ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestRevokeTwiceIsNoError(t *testing.T) {
	ctx := context.Background()
	repo := newInMemorySessionRepo()
	svc := NewTokenService(newCodecForTest(), repo, 15*time.Minute, 7*24*time.Hour)

	if _, err := svc.Issue(ctx, 8, domain.RoleDeveloper); err != nil {
		t.Fatalf("issue: %v", err)
	}
	if err := svc.Revoke(ctx, 8); err != nil {
		t.Fatalf("first revoke: %v", err)
	}
	if err := svc.Revoke(ctx, 8); err != nil {
		t.Fatalf("second revoke: %v", err)
	}
	s, err := repo.FindByUserID(ctx, 8)
	if err != nil {
		t.Fatalf("find session: %v", err)
	}
	if !s.Revoked {
		t.Fatal("expected session to stay revoked")
	}
}
