package service

import (
	"context"
	"errors"
	"strings"

	"github.com/tradersfamily/campaign-data-api/internal/domain"
	"github.com/tradersfamily/campaign-data-api/internal/observability"
	"github.com/tradersfamily/campaign-data-api/internal/repository"
	"github.com/tradersfamily/campaign-data-api/internal/security"
)

var (
	// ErrInvalidCredentials covers unknown email and wrong password alike so
	// responses never reveal which factor failed.
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountDeleted     = errors.New("account has been deleted")
	ErrDuplicateEmail     = repository.ErrDuplicateEmail
	ErrInvalidRole        = errors.New("invalid role")
)

type LoginResult struct {
	UserID       uint
	Role         domain.Role
	AccessToken  string
	RefreshToken string
}

type AuthService struct {
	userRepo repository.UserRepository
	tokens   *TokenService
}

func NewAuthService(userRepo repository.UserRepository, tokens *TokenService) *AuthService {
	return &AuthService{userRepo: userRepo, tokens: tokens}
}

// Register creates a dashboard account. Email is unique among live accounts.
func (s *AuthService) Register(ctx context.Context, fullName, email string, role domain.Role, password string) (*domain.User, error) {
	if !role.Valid() {
		return nil, ErrInvalidRole
	}
	hash, err := security.HashPassword(password)
	if err != nil {
		return nil, err
	}
	user := &domain.User{
		FullName:     strings.TrimSpace(fullName),
		Email:        strings.ToLower(strings.TrimSpace(email)),
		Role:         role,
		PasswordHash: hash,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// VerifyCredentials checks an email/password pair without issuing tokens.
// Deleted accounts fail after the password check so the error cannot be used
// to probe which emails exist.
func (s *AuthService) VerifyCredentials(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.userRepo.FindByEmailAny(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !security.VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	if user.DeletedAt.Valid {
		return nil, ErrAccountDeleted
	}
	return user, nil
}

// Login verifies credentials and issues a fresh token pair. A second login
// for the same user supersedes the previous pair in place.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.VerifyCredentials(ctx, email, password)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidCredentials):
			observability.RecordAuthLogin("invalid_credentials")
		case errors.Is(err, ErrAccountDeleted):
			observability.RecordAuthLogin("account_deleted")
		}
		return nil, err
	}
	pair, err := s.tokens.Issue(ctx, user.ID, user.Role)
	if err != nil {
		observability.RecordAuthLogin("error")
		return nil, err
	}
	observability.RecordAuthLogin("success")
	return &LoginResult{
		UserID:       user.ID,
		Role:         user.Role,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// Logout revokes the user's session. The row survives for audit.
func (s *AuthService) Logout(ctx context.Context, userID uint) error {
	if err := s.tokens.Revoke(ctx, userID); err != nil {
		observability.RecordAuthLogout("error")
		return err
	}
	observability.RecordAuthLogout("success")
	return nil
}
