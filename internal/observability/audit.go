package observability

import (
	"log/slog"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Audit emits one structured line for a security-relevant request event
// (register, login, logout, data pull). These lines are the only record of a
// revoked session's history, so they carry the caller's address.
func Audit(r *http.Request, event string, attrs ...any) {
	base := []any{
		"event", event,
		"method", r.Method,
		"path", r.URL.Path,
		"request_id", chimiddleware.GetReqID(r.Context()),
		"remote_ip", r.RemoteAddr,
	}
	slog.InfoContext(r.Context(), "audit", append(base, attrs...)...)
}
