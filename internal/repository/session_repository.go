package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/tradersfamily/campaign-data-api/internal/domain"
	"github.com/tradersfamily/campaign-data-api/internal/observability"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrSessionNotFound = errors.New("session not found")

type SessionRepository interface {
	FindByUserID(ctx context.Context, userID uint) (*domain.Session, error)
	FindByAccessToken(ctx context.Context, accessToken string) (*domain.Session, error)
	// Upsert writes the latest token pair for userID in one atomic statement:
	// insert a fresh row, or on conflict rotate the session id, replace both
	// tokens, clear the revoked flag and reset the expiry. Concurrent logins
	// for one user resolve last-write-wins without ever producing two rows.
	Upsert(ctx context.Context, userID uint, role domain.Role, accessToken, refreshToken string, expiresAt time.Time) (*domain.Session, error)
	UpdateAccessToken(ctx context.Context, userID uint, accessToken string) error
	Revoke(ctx context.Context, userID uint) error
}

type GormSessionRepository struct{ db *gorm.DB }

func NewSessionRepository(db *gorm.DB) SessionRepository { return &GormSessionRepository{db: db} }

func (r *GormSessionRepository) FindByUserID(ctx context.Context, userID uint) (*domain.Session, error) {
	var s domain.Session
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "session", "find_by_user_id", "not_found")
			return nil, ErrSessionNotFound
		}
		observability.RecordRepositoryOperation(ctx, "session", "find_by_user_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "session", "find_by_user_id", "success")
	return &s, nil
}

func (r *GormSessionRepository) FindByAccessToken(ctx context.Context, accessToken string) (*domain.Session, error) {
	var s domain.Session
	err := r.db.WithContext(ctx).Where("access_token = ?", accessToken).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "session", "find_by_access_token", "not_found")
			return nil, ErrSessionNotFound
		}
		observability.RecordRepositoryOperation(ctx, "session", "find_by_access_token", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "session", "find_by_access_token", "success")
	return &s, nil
}

func (r *GormSessionRepository) Upsert(ctx context.Context, userID uint, role domain.Role, accessToken, refreshToken string, expiresAt time.Time) (*domain.Session, error) {
	now := time.Now().UTC()
	s := domain.Session{
		SessionID:    uuid.NewString(),
		UserID:       userID,
		Role:         role,
		LoggedIn:     true,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
		Revoked:      false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"session_id", "role", "logged_in", "access_token", "refresh_token",
			"expires_at", "revoked", "updated_at",
		}),
	}).Create(&s).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "session", "upsert", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "session", "upsert", "success")
	return &s, nil
}

func (r *GormSessionRepository) UpdateAccessToken(ctx context.Context, userID uint, accessToken string) error {
	res := r.db.WithContext(ctx).Model(&domain.Session{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{"access_token": accessToken, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		observability.RecordRepositoryOperation(ctx, "session", "update_access_token", "error")
		return res.Error
	}
	if res.RowsAffected == 0 {
		observability.RecordRepositoryOperation(ctx, "session", "update_access_token", "not_found")
		return ErrSessionNotFound
	}
	observability.RecordRepositoryOperation(ctx, "session", "update_access_token", "success")
	return nil
}

// Revoke marks the user's session unusable. The row is kept for audit and a
// second call is a no-op.
func (r *GormSessionRepository) Revoke(ctx context.Context, userID uint) error {
	err := r.db.WithContext(ctx).Model(&domain.Session{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{"revoked": true, "logged_in": false, "updated_at": time.Now().UTC()}).Error
	if err != nil {
		observability.RecordRepositoryOperation(ctx, "session", "revoke", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "session", "revoke", "success")
	return nil
}
