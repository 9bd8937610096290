package security

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewCSRFTokenIsRandomHex(t *testing.T) {
	a, err := NewCSRFToken()
	if err != nil {
		t.Fatalf("new csrf token: %v", err)
	}
	b, err := NewCSRFToken()
	if err != nil {
		t.Fatalf("new csrf token: %v", err)
	}
	if len(a) != 32 {
		t.Fatalf("expected 32 hex chars, got %d", len(a))
	}
	if a == b {
		t.Fatal("expected distinct tokens")
	}
}

func TestTokensEqual(t *testing.T) {
	if !TokensEqual("abc", "abc") {
		t.Fatal("equal tokens should match")
	}
	if TokensEqual("abc", "abd") || TokensEqual("abc", "") {
		t.Fatal("different tokens should not match")
	}
}

func TestGetCookie(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	if got := GetCookie(r, "missing"); got != "" {
		t.Fatalf("expected empty value for missing cookie, got %q", got)
	}
	r.AddCookie(&http.Cookie{Name: "csrf_token", Value: "abc"})
	if got := GetCookie(r, "csrf_token"); got != "abc" {
		t.Fatalf("expected cookie value abc, got %q", got)
	}
}
