package app

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tradersfamily/campaign-data-api/internal/config"
	"github.com/tradersfamily/campaign-data-api/internal/health"
	"github.com/tradersfamily/campaign-data-api/internal/http/handler"
	"github.com/tradersfamily/campaign-data-api/internal/http/middleware"
	"github.com/tradersfamily/campaign-data-api/internal/http/router"
	"github.com/tradersfamily/campaign-data-api/internal/repository"
	"github.com/tradersfamily/campaign-data-api/internal/security"
	"github.com/tradersfamily/campaign-data-api/internal/service"
	"github.com/tradersfamily/campaign-data-api/internal/sheets"
)

// Browser-session CSRF tokens outlive neither the working day nor a redis
// restart; an hour forces a fresh credential check after that.
const csrfTokenTTL = time.Hour

type StopFunc func()

func OpenDatabase(cfg *config.Config) (*gorm.DB, error) {
	level := gormlogger.Warn
	if cfg.Debug {
		level = gormlogger.Info
	}
	gcfg := &gorm.Config{Logger: gormlogger.Default.LogMode(level)}
	if cfg.DatabaseDriver == "postgres" {
		return gorm.Open(postgres.Open(cfg.DatabaseDSN), gcfg)
	}
	return gorm.Open(sqlite.Open(cfg.DatabaseDSN), gcfg)
}

func NewRedisClient(cfg *config.Config) redis.UniversalClient {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
}

func NewTokenCodec(cfg *config.Config) *security.TokenCodec {
	return security.NewTokenCodec(cfg.JWTIssuer, cfg.JWTAccessSecret, cfg.JWTRefreshSecret)
}

func NewTokenService(codec *security.TokenCodec, sessions repository.SessionRepository, cfg *config.Config) *service.TokenService {
	return service.NewTokenService(codec, sessions, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)
}

func NewCSRFGuard(client redis.UniversalClient, cfg *config.Config) *service.CSRFGuard {
	return service.NewCSRFGuard(service.NewRedisCSRFStore(client, "csrf_session"), csrfTokenTTL)
}

func NewSheetsClient(cfg *config.Config) *sheets.Client {
	return sheets.NewClient(sheets.Credentials{
		ClientID:     cfg.SheetsClientID,
		ClientSecret: cfg.SheetsClientSecret,
		RefreshToken: cfg.SheetsRefreshToken,
		TokenURI:     cfg.SheetsTokenURI,
	}, cfg.SheetsTimeout)
}

func NewIngestConfig(cfg *config.Config) service.IngestConfig {
	return service.IngestConfig{
		SpreadsheetID:    cfg.SheetsSpreadsheetID,
		DepositRange:     cfg.DepositRange,
		GoogleAdsRange:   cfg.GoogleAdsRange,
		FacebookAdsRange: cfg.FacebookAdsRange,
		TikTokAdsRange:   cfg.TikTokAdsRange,
	}
}

func NewCookieSettings(cfg *config.Config) handler.CookieSettings {
	return handler.CookieSettings{
		Secure:     cfg.SecureCookies,
		RefreshTTL: cfg.RefreshTokenTTL,
		CSRFTTL:    csrfTokenTTL,
	}
}

func NewReadiness(db *gorm.DB, client redis.UniversalClient) *health.ProbeRunner {
	pr := health.NewProbeRunner(5*time.Second, 2*time.Second)
	pr.Register("database", func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	})
	pr.Register("redis", func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	})
	return pr
}

func NewRouterDependencies(
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	campaignHandler *handler.CampaignHandler,
	gate middleware.Authenticator,
	guard *service.CSRFGuard,
	readiness *health.ProbeRunner,
) router.Dependencies {
	return router.Dependencies{
		AuthHandler:      authHandler,
		CampaignHandler:  campaignHandler,
		Gate:             gate,
		CSRFGuard:        guard,
		CORSOrigins:      cfg.CORSOrigins,
		APIRateLimitRPM:  cfg.APIRateLimitRPM,
		AuthRateLimitRPM: cfg.AuthRateLimitRPM,
		BodyLimitBytes:   cfg.BodyLimitBytes,
		Readiness:        readiness,
		EnableOTelHTTP:   cfg.EnableOTelHTTP,
	}
}

func NewHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           h,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
	}
}

func NewStop(db *gorm.DB, client redis.UniversalClient) StopFunc {
	return func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
		_ = client.Close()
	}
}
