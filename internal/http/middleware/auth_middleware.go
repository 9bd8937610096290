package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/tradersfamily/campaign-data-api/internal/domain"
	"github.com/tradersfamily/campaign-data-api/internal/http/response"
	"github.com/tradersfamily/campaign-data-api/internal/service"
)

type contextKey string

const userContextKey contextKey = "user"

// Authenticator is the slice of the auth gate the middleware needs.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*domain.User, error)
}

// Auth resolves the bearer token to its user, refreshing an expired access
// token behind the scenes, and stores the principal in the request context.
func Auth(gate Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := bearerToken(r)
			if raw == "" {
				response.Unauthorized(w, r, "missing access token")
				return
			}
			user, err := gate.Authenticate(r.Context(), raw)
			if err != nil {
				if errors.Is(err, service.ErrUnauthenticated) {
					response.Unauthorized(w, r, "invalid access token")
					return
				}
				response.Internal(w, r)
				return
			}
			ctx := context.WithValue(r.Context(), userContextKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func UserFromContext(ctx context.Context) (*domain.User, bool) {
	u, ok := ctx.Value(userContextKey).(*domain.User)
	return u, ok
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if strings.HasPrefix(strings.ToLower(auth), "bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}
