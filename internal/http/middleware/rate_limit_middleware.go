package middleware

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/tradersfamily/campaign-data-api/internal/http/response"
)

// RateLimiter is a local fixed-window limiter keyed by client IP. Good enough
// for a single-instance deployment; the auth routes get a tighter window than
// the rest of the API.
type RateLimiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	windows map[string]*rateWindow
	cleanup time.Time
}

type rateWindow struct {
	start time.Time
	count int
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RateLimiter{
		limit:   limit,
		window:  window,
		windows: make(map[string]*rateWindow),
		cleanup: time.Now().Add(window),
	}
}

func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, remaining, resetAt := rl.allow(r.RemoteAddr, time.Now())
			h := w.Header()
			h.Set("X-RateLimit-Limit", fmt.Sprintf("%d", rl.limit))
			h.Set("X-RateLimit-Remaining", fmt.Sprintf("%d", remaining))
			h.Set("X-RateLimit-Reset", fmt.Sprintf("%d", resetAt.Unix()))
			if !allowed {
				retry := int(time.Until(resetAt).Round(time.Second).Seconds())
				if retry < 1 {
					retry = 1
				}
				h.Set("Retry-After", fmt.Sprintf("%d", retry))
				response.Error(w, r, http.StatusTooManyRequests, response.CodeRateLimited, "too many requests", nil)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (rl *RateLimiter) allow(key string, now time.Time) (bool, int, time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.After(rl.cleanup) {
		for k, win := range rl.windows {
			if now.Sub(win.start) > 2*rl.window {
				delete(rl.windows, k)
			}
		}
		rl.cleanup = now.Add(rl.window)
	}

	win, ok := rl.windows[key]
	if !ok || now.Sub(win.start) >= rl.window {
		win = &rateWindow{start: now}
		rl.windows[key] = win
	}
	resetAt := win.start.Add(rl.window)
	if win.count >= rl.limit {
		return false, 0, resetAt
	}
	win.count++
	return true, rl.limit - win.count, resetAt
}
