package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newRedisClientForTest(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	server := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		server.Close()
	})
	return server, client
}

func TestRedisCSRFStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	_, client := newRedisClientForTest(t)
	store := NewRedisCSRFStore(client, "")

	got, err := store.Get(ctx, "sid-1")
	if err != nil {
		t.Fatalf("get before set: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty value, got %q", got)
	}
	if err := store.Set(ctx, "sid-1", "tok-abc", time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err = store.Get(ctx, "sid-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "tok-abc" {
		t.Fatalf("expected tok-abc, got %q", got)
	}
}

func TestRedisCSRFStoreExpiry(t *testing.T) {
	ctx := context.Background()
	server, client := newRedisClientForTest(t)
	store := NewRedisCSRFStore(client, "")

	if err := store.Set(ctx, "sid-1", "tok-abc", time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	server.FastForward(2 * time.Minute)
	got, err := store.Get(ctx, "sid-1")
	if err != nil {
		t.Fatalf("get after expiry: %v", err)
	}
	if got != "" {
		t.Fatalf("expected token to expire, got %q", got)
	}
}

func TestCSRFGuardWithRedisStore(t *testing.T) {
	ctx := context.Background()
	_, client := newRedisClientForTest(t)
	guard := NewCSRFGuard(NewRedisCSRFStore(client, ""), time.Hour)

	token, err := guard.Issue(ctx, "sid-9")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	again, err := guard.Issue(ctx, "sid-9")
	if err != nil {
		t.Fatalf("issue again: %v", err)
	}
	if token != again {
		t.Fatal("expected stable token via redis store")
	}
	if err := guard.Validate(ctx, "sid-9", token); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestRedisCSRFStoreNilClientIsNoop(t *testing.T) {
	ctx := context.Background()
	store := NewRedisCSRFStore(nil, "")
	if err := store.Set(ctx, "sid", "tok", time.Hour); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := store.Get(ctx, "sid")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != "" {
		t.Fatalf("expected empty value from nil client, got %q", got)
	}
}
