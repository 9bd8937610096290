package middleware

import (
	"errors"
	"net/http"

	"github.com/tradersfamily/campaign-data-api/internal/http/response"
	"github.com/tradersfamily/campaign-data-api/internal/security"
	"github.com/tradersfamily/campaign-data-api/internal/service"
)

const (
	CSRFCookieName           = "csrf_token"
	CSRFHeaderName           = "X-CSRF-Token"
	BrowserSessionCookieName = "browser_session"
)

// CSRF enforces the double-submit check plus a server-side lookup: the cookie
// must byte-match the header, and the pair must match the token stored for the
// browser-session cookie. The browser session lives independently of the
// bearer-token session rows.
func CSRF(guard *service.CSRFGuard) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie := security.GetCookie(r, CSRFCookieName)
			header := r.Header.Get(CSRFHeaderName)
			if cookie == "" || header == "" || !security.TokensEqual(cookie, header) {
				response.Error(w, r, http.StatusForbidden, response.CodeCSRFMismatch, "csrf token mismatch", nil)
				return
			}
			sid := security.GetCookie(r, BrowserSessionCookieName)
			if sid == "" {
				response.Error(w, r, http.StatusForbidden, response.CodeCSRFMismatch, "csrf token mismatch", nil)
				return
			}
			if err := guard.Validate(r.Context(), sid, header); err != nil {
				if errors.Is(err, service.ErrCSRFMismatch) {
					response.Error(w, r, http.StatusForbidden, response.CodeCSRFMismatch, "csrf token mismatch", nil)
					return
				}
				response.Internal(w, r)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
