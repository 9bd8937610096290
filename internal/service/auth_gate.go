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

// ErrUnauthenticated is the single failure mode the gate exposes. Every
// internal reason (unknown token, revoked session, failed refresh, deleted
// user) collapses into it so responses stay uniform.
var ErrUnauthenticated = errors.New("unauthenticated")

// AuthGate resolves a presented bearer token to its owning user. Expired
// access tokens are refreshed transparently against the stored refresh token,
// so a client never performs an explicit refresh call.
type AuthGate struct {
	codec       *security.TokenCodec
	tokens      *TokenService
	sessionRepo repository.SessionRepository
	userRepo    repository.UserRepository
}

func NewAuthGate(codec *security.TokenCodec, tokens *TokenService, sessionRepo repository.SessionRepository, userRepo repository.UserRepository) *AuthGate {
	return &AuthGate{codec: codec, tokens: tokens, sessionRepo: sessionRepo, userRepo: userRepo}
}

func (g *AuthGate) Authenticate(ctx context.Context, accessToken string) (*domain.User, error) {
	// Validation joins against the session row, not the token alone: a pair
	// superseded by a later login fails here even before its embedded expiry.
	session, err := g.sessionRepo.FindByAccessToken(ctx, accessToken)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			observability.RecordAccessTokenValidation(ctx, "orphaned")
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	if !session.Usable(time.Now()) {
		outcome := "expired_session"
		if session.Revoked {
			outcome = "revoked"
		}
		observability.RecordAccessTokenValidation(ctx, outcome)
		return nil, ErrUnauthenticated
	}

	claims, err := g.codec.ParseAccessToken(accessToken)
	switch {
	case err == nil:
	case errors.Is(err, security.ErrTokenExpired):
		fresh, refreshErr := g.tokens.Refresh(ctx, session.RefreshToken)
		if refreshErr != nil {
			if errors.Is(refreshErr, ErrSessionRevoked) || errors.Is(refreshErr, ErrSessionNotFound) ||
				errors.Is(refreshErr, security.ErrTokenExpired) || errors.Is(refreshErr, security.ErrTokenMalformed) {
				observability.RecordAccessTokenValidation(ctx, "refresh_failed")
				return nil, ErrUnauthenticated
			}
			return nil, refreshErr
		}
		claims, err = g.codec.ParseAccessToken(fresh)
		if err != nil {
			observability.RecordAccessTokenValidation(ctx, "refresh_failed")
			return nil, ErrUnauthenticated
		}
		observability.RecordAccessTokenValidation(ctx, "refreshed")
	case errors.Is(err, security.ErrTokenMalformed):
		observability.RecordAccessTokenValidation(ctx, "malformed")
		return nil, ErrUnauthenticated
	default:
		return nil, err
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, ErrUnauthenticated
	}
	user, err := g.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			observability.RecordAccessTokenValidation(ctx, "user_missing")
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	observability.RecordAccessTokenValidation(ctx, "valid")
	return user, nil
}
