package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tradersfamily/campaign-data-api/internal/health"
	"github.com/tradersfamily/campaign-data-api/internal/http/handler"
	"github.com/tradersfamily/campaign-data-api/internal/http/middleware"
	"github.com/tradersfamily/campaign-data-api/internal/http/response"
	"github.com/tradersfamily/campaign-data-api/internal/service"
)

type Dependencies struct {
	AuthHandler      *handler.AuthHandler
	CampaignHandler  *handler.CampaignHandler
	Gate             middleware.Authenticator
	CSRFGuard        *service.CSRFGuard
	CORSOrigins      []string
	APIRateLimitRPM  int
	AuthRateLimitRPM int
	BodyLimitBytes   int64
	Readiness        *health.ProbeRunner
	EnableOTelHTTP   bool
}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))
	if dep.BodyLimitBytes <= 0 {
		dep.BodyLimitBytes = 1 << 20
	}
	r.Use(middleware.BodyLimit(dep.BodyLimitBytes))
	r.Use(middleware.NewRateLimiter(dep.APIRateLimitRPM, time.Minute).Middleware())

	authLimiter := middleware.NewRateLimiter(dep.AuthRateLimitRPM, time.Minute).Middleware()
	requireAuth := middleware.Auth(dep.Gate)
	requireCSRF := middleware.CSRF(dep.CSRFGuard)

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": []any{}})
			return
		}
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.Error(w, r, http.StatusServiceUnavailable, response.CodeNotReady, "dependencies are not ready", map[string]any{"checks": results})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(authLimiter).Post("/register", dep.AuthHandler.Register)
			r.With(authLimiter).Post("/csrf-token", dep.AuthHandler.CSRFToken)
			r.With(authLimiter, requireCSRF).Post("/login", dep.AuthHandler.Login)
			r.With(requireAuth).Post("/logout", dep.AuthHandler.Logout)
		})

		r.With(requireAuth).Get("/me", dep.AuthHandler.Me)

		r.Route("/campaigns", func(r chi.Router) {
			r.Use(requireAuth)
			r.With(requireCSRF).Post("/refresh", dep.CampaignHandler.Refresh)
			r.Get("/summary", dep.CampaignHandler.Summary)
		})
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
