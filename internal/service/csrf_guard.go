package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/tradersfamily/campaign-data-api/internal/security"
)

var ErrCSRFMismatch = errors.New("csrf token mismatch")

// CSRFStore keeps one anti-forgery token per browser session context. The
// browser session is its own lifecycle, deliberately independent of the
// bearer-token Session rows.
type CSRFStore interface {
	Get(ctx context.Context, browserSessionID string) (string, error)
	Set(ctx context.Context, browserSessionID, token string, ttl time.Duration) error
}

type CSRFGuard struct {
	store CSRFStore
	ttl   time.Duration
}

func NewCSRFGuard(store CSRFStore, ttl time.Duration) *CSRFGuard {
	return &CSRFGuard{store: store, ttl: ttl}
}

// Issue returns the context's token, creating one on first use. The token is
// stable for the life of the browser session; the caller mirrors it into an
// HTTP-only cookie.
func (g *CSRFGuard) Issue(ctx context.Context, browserSessionID string) (string, error) {
	existing, err := g.store.Get(ctx, browserSessionID)
	if err != nil {
		return "", err
	}
	if existing != "" {
		return existing, nil
	}
	token, err := security.NewCSRFToken()
	if err != nil {
		return "", err
	}
	if err := g.store.Set(ctx, browserSessionID, token, g.ttl); err != nil {
		return "", err
	}
	return token, nil
}

// Validate checks the presented value byte-for-byte against the stored one.
func (g *CSRFGuard) Validate(ctx context.Context, browserSessionID, presented string) error {
	if presented == "" {
		return ErrCSRFMismatch
	}
	stored, err := g.store.Get(ctx, browserSessionID)
	if err != nil {
		return err
	}
	if stored == "" || !security.TokensEqual(stored, presented) {
		return ErrCSRFMismatch
	}
	return nil
}

// MemoryCSRFStore backs tests and single-process development runs.
type MemoryCSRFStore struct {
	mu     sync.Mutex
	tokens map[string]memoryCSRFEntry
}

type memoryCSRFEntry struct {
	token     string
	expiresAt time.Time
}

func NewMemoryCSRFStore() *MemoryCSRFStore {
	return &MemoryCSRFStore{tokens: make(map[string]memoryCSRFEntry)}
}

func (s *MemoryCSRFStore) Get(_ context.Context, browserSessionID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.tokens[browserSessionID]
	if !ok {
		return "", nil
	}
	if !e.expiresAt.After(time.Now()) {
		delete(s.tokens, browserSessionID)
		return "", nil
	}
	return e.token, nil
}

func (s *MemoryCSRFStore) Set(_ context.Context, browserSessionID, token string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	// The expiry is always set; a non-positive ttl lands in the past so Get
	// treats the entry as already expired.
	s.tokens[browserSessionID] = memoryCSRFEntry{
		token:     token,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}
