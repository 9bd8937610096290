package security

import (
	"errors"
	"testing"
	"time"
)

func newCodecForTest() *TokenCodec {
	return NewTokenCodec(
		"campaign-data-api",
		"abcdefghijklmnopqrstuvwxyz123456",
		"abcdefghijklmnopqrstuvwxyz654321",
	)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	codec := newCodecForTest()
	raw, err := codec.SignAccessToken(42, 15*time.Minute)
	if err != nil {
		t.Fatalf("sign access token: %v", err)
	}
	claims, err := codec.ParseAccessToken(raw)
	if err != nil {
		t.Fatalf("parse access token: %v", err)
	}
	if claims.TokenType != TokenKindAccess {
		t.Fatalf("unexpected token type %q", claims.TokenType)
	}
	id, err := claims.UserID()
	if err != nil {
		t.Fatalf("parse subject: %v", err)
	}
	if id != 42 {
		t.Fatalf("expected subject 42, got %d", id)
	}
}

func TestExpiredAccessTokenReturnsExpiredSentinel(t *testing.T) {
	codec := newCodecForTest()
	raw, err := codec.SignAccessToken(7, -time.Minute)
	if err != nil {
		t.Fatalf("sign access token: %v", err)
	}
	if _, err := codec.ParseAccessToken(raw); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestMalformedTokenReturnsMalformedSentinel(t *testing.T) {
	codec := newCodecForTest()
	for _, raw := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := codec.ParseAccessToken(raw); !errors.Is(err, ErrTokenMalformed) {
			t.Fatalf("ParseAccessToken(%q): expected ErrTokenMalformed, got %v", raw, err)
		}
	}
}

func TestRefreshTokenRejectedAsAccessToken(t *testing.T) {
	codec := newCodecForTest()
	raw, err := codec.SignRefreshToken(7, time.Hour)
	if err != nil {
		t.Fatalf("sign refresh token: %v", err)
	}
	if _, err := codec.ParseAccessToken(raw); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed for refresh token on access parse, got %v", err)
	}
}

func TestTokenSignedWithDifferentSecretRejected(t *testing.T) {
	other := NewTokenCodec("campaign-data-api", "zzzzzzzzzzzzzzzzzzzzzzzzzzzzzzzz", "yyyyyyyyyyyyyyyyyyyyyyyyyyyyyyyy")
	raw, err := other.SignAccessToken(7, time.Hour)
	if err != nil {
		t.Fatalf("sign access token: %v", err)
	}
	if _, err := newCodecForTest().ParseAccessToken(raw); !errors.Is(err, ErrTokenMalformed) {
		t.Fatalf("expected ErrTokenMalformed for foreign signature, got %v", err)
	}
}
