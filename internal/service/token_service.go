package service

import (
	"context"
	"errors"
	"time"

	"github.com/tradersfamily/campaign-data-api/internal/domain"
	"github.com/tradersfamily/campaign-data-api/internal/observability"
	"github.com/tradersfamily/campaign-data-api/internal/repository"
	"github.com/tradersfamily/campaign-data-api/internal/security"
)

var (
	ErrSessionRevoked  = errors.New("session revoked")
	ErrSessionNotFound = errors.New("session not found")
)

// TokenPair is the result of a successful issuance. The Session row is the
// sole durable reference to it; once a later login supersedes the pair it is
// invalid regardless of embedded expiry.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenService mints, refreshes and revokes the per-user token pair.
type TokenService struct {
	codec       *security.TokenCodec
	sessionRepo repository.SessionRepository
	accessTTL   time.Duration
	refreshTTL  time.Duration
}

func NewTokenService(codec *security.TokenCodec, sessionRepo repository.SessionRepository, accessTTL, refreshTTL time.Duration) *TokenService {
	return &TokenService{codec: codec, sessionRepo: sessionRepo, accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// Issue mints a fresh pair and persists it with exactly one durable write.
// The upsert supersedes any pair issued by an earlier login.
func (s *TokenService) Issue(ctx context.Context, userID uint, role domain.Role) (*TokenPair, error) {
	access, err := s.codec.SignAccessToken(userID, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, err := s.codec.SignRefreshToken(userID, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	if _, err := s.sessionRepo.Upsert(ctx, userID, role, access, refresh, time.Now().Add(s.refreshTTL)); err != nil {
		return nil, err
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh mints a new access token against a still-valid refresh token and
// overwrites the session's access-token field. The refresh token itself is
// not rotated.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.codec.ParseRefreshToken(refreshToken)
	if err != nil {
		observability.RecordAuthRefresh("invalid_token")
		return "", err
	}
	userID, err := claims.UserID()
	if err != nil {
		observability.RecordAuthRefresh("invalid_token")
		return "", err
	}
	session, err := s.sessionRepo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			observability.RecordAuthRefresh("session_not_found")
			return "", ErrSessionNotFound
		}
		return "", err
	}
	if session.Revoked {
		observability.RecordAuthRefresh("session_revoked")
		return "", ErrSessionRevoked
	}
	access, err := s.codec.SignAccessToken(userID, s.accessTTL)
	if err != nil {
		return "", err
	}
	if err := s.sessionRepo.UpdateAccessToken(ctx, userID, access); err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			observability.RecordAuthRefresh("session_not_found")
			return "", ErrSessionNotFound
		}
		return "", err
	}
	observability.RecordAuthRefresh("success")
	return access, nil
}

// Revoke marks the user's session unusable; calling it twice is fine.
func (s *TokenService) Revoke(ctx context.Context, userID uint) error {
	return s.sessionRepo.Revoke(ctx, userID)
}
