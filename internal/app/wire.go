//go:build wireinject
// +build wireinject

package app

import (
	"context"
	"log/slog"

	"github.com/google/wire"
	sdklog "go.opentelemetry.io/otel/sdk/log"

	"github.com/tradersfamily/campaign-data-api/internal/config"
	"github.com/tradersfamily/campaign-data-api/internal/http/handler"
	"github.com/tradersfamily/campaign-data-api/internal/http/middleware"
	"github.com/tradersfamily/campaign-data-api/internal/http/router"
	"github.com/tradersfamily/campaign-data-api/internal/observability"
	"github.com/tradersfamily/campaign-data-api/internal/repository"
	"github.com/tradersfamily/campaign-data-api/internal/service"
	"github.com/tradersfamily/campaign-data-api/internal/sheets"
)

func InitializeApp(ctx context.Context, cfg *config.Config, logger *slog.Logger, loggerProvider *sdklog.LoggerProvider) (*App, error) {
	wire.Build(
		observability.InitRuntime,
		OpenDatabase,
		NewRedisClient,
		repository.NewUserRepository,
		repository.NewSessionRepository,
		repository.NewCampaignRepository,
		NewTokenCodec,
		NewTokenService,
		service.NewAuthService,
		service.NewAuthGate,
		NewCSRFGuard,
		NewSheetsClient,
		NewIngestConfig,
		service.NewIngestService,
		service.NewReportService,
		NewCookieSettings,
		handler.NewAuthHandler,
		handler.NewCampaignHandler,
		NewReadiness,
		NewRouterDependencies,
		router.NewRouter,
		NewHTTPServer,
		NewStop,
		New,
		wire.Bind(new(service.SheetReader), new(*sheets.Client)),
		wire.Bind(new(middleware.Authenticator), new(*service.AuthGate)),
		wire.Bind(new(handler.AuthAPI), new(*service.AuthService)),
		wire.Bind(new(handler.IngestAPI), new(*service.IngestService)),
		wire.Bind(new(handler.ReportAPI), new(*service.ReportService)),
	)
	return nil, nil
}
