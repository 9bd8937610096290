package security

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	TokenKindAccess  = "access"
	TokenKindRefresh = "refresh"
)

// Token parse outcomes. Expiry is an expected branch for the auth gate, not an
// exceptional one, so it gets its own sentinel.
var (
	ErrTokenExpired   = errors.New("token expired")
	ErrTokenMalformed = errors.New("token malformed")
)

type Claims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil {
		return 0, ErrTokenMalformed
	}
	return uint(id), nil
}

// TokenCodec signs and verifies the access/refresh token pair. Secrets and
// issuer are process-wide configuration loaded once at startup; parsing does
// no I/O.
type TokenCodec struct {
	issuer        string
	accessSecret  []byte
	refreshSecret []byte
}

func NewTokenCodec(issuer, accessSecret, refreshSecret string) *TokenCodec {
	return &TokenCodec{
		issuer:        issuer,
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
	}
}

func (c *TokenCodec) SignAccessToken(userID uint, ttl time.Duration) (string, error) {
	return c.sign(userID, TokenKindAccess, ttl, c.accessSecret)
}

func (c *TokenCodec) SignRefreshToken(userID uint, ttl time.Duration) (string, error) {
	return c.sign(userID, TokenKindRefresh, ttl, c.refreshSecret)
}

func (c *TokenCodec) sign(userID uint, kind string, ttl time.Duration, secret []byte) (string, error) {
	claims := Claims{
		TokenType: kind,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   fmt.Sprintf("%d", userID),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ID:        uuid.NewString(),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}

func (c *TokenCodec) ParseAccessToken(raw string) (*Claims, error) {
	return c.parse(raw, c.accessSecret, TokenKindAccess)
}

func (c *TokenCodec) ParseRefreshToken(raw string) (*Claims, error) {
	return c.parse(raw, c.refreshSecret, TokenKindRefresh)
}

func (c *TokenCodec) parse(raw string, secret []byte, kind string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (any, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, ErrTokenMalformed
		}
		return secret, nil
	}, jwt.WithIssuer(c.issuer))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenMalformed
	}
	if !tok.Valid {
		return nil, ErrTokenMalformed
	}
	if claims.TokenType != kind {
		return nil, ErrTokenMalformed
	}
	return claims, nil
}
