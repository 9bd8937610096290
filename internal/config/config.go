package config

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"
)

const (
	ProfileDevelopment = "development"
	ProfileProduction  = "production"
)

type Config struct {
	Profile string
	Debug   bool

	HTTPAddr                     string
	ReadHeaderTimeout            time.Duration
	ShutdownTimeout              time.Duration
	ShutdownHTTPDrainTimeout     time.Duration
	ShutdownObservabilityTimeout time.Duration

	DatabaseDriver string
	DatabaseDSN    string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTIssuer        string
	JWTAccessSecret  string
	JWTRefreshSecret string
	AccessTokenTTL   time.Duration
	RefreshTokenTTL  time.Duration

	// SecureCookies controls the Secure attribute on csrf_token, refresh_token
	// and browser-session cookies. Off in development only.
	SecureCookies bool

	CORSOrigins      []string
	APIRateLimitRPM  int
	AuthRateLimitRPM int
	BodyLimitBytes   int64

	SheetsClientID      string
	SheetsClientSecret  string
	SheetsRefreshToken  string
	SheetsTokenURI      string
	SheetsSpreadsheetID string
	SheetsTimeout       time.Duration
	DepositRange        string
	GoogleAdsRange      string
	FacebookAdsRange    string
	TikTokAdsRange      string

	LogLevel                  slog.Level
	OTELServiceName           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsEnabled        bool
	OTELTracesEnabled         bool
	OTELLogsEnabled           bool
	OTELMetricsExportInterval time.Duration
	EnableOTelHTTP            bool
}

type Env interface {
	Getenv(key string) string
}

type osEnvShim func(string) string

func (f osEnvShim) Getenv(key string) string { return f(key) }

func EnvFunc(f func(string) string) Env { return osEnvShim(f) }

// Load reads configuration from the environment. Every load attempt is
// counted with its outcome so a misconfigured deploy shows up on a dashboard
// before it shows up in a pager.
func Load(ctx context.Context, env Env) (*Config, error) {
	cfg, err := load(env)
	profile := ""
	if cfg != nil {
		profile = cfg.Profile
	}
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	recordConfigValidationEvent(ctx, profile, outcome, classifyConfigLoadError(err))
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func load(env Env) (*Config, error) {
	profile := strings.TrimSpace(strings.ToLower(getString(env, "ENV", ProfileDevelopment)))
	if profile != ProfileDevelopment && profile != ProfileProduction {
		return nil, fmt.Errorf("validate config: ENV must be %q or %q, got %q", ProfileDevelopment, ProfileProduction, profile)
	}
	debug := profile == ProfileDevelopment

	defaultDriver, defaultDSN := "postgres", ""
	if debug {
		defaultDriver, defaultDSN = "sqlite", "file:campaign_data_dev.db"
	}

	cfg := &Config{
		Profile: profile,
		Debug:   debug,

		HTTPAddr: getString(env, "HTTP_ADDR", ":8080"),

		DatabaseDriver: getString(env, "DATABASE_DRIVER", defaultDriver),
		DatabaseDSN:    getString(env, "DATABASE_URL", defaultDSN),

		RedisAddr:     getString(env, "REDIS_ADDR", "localhost:6379"),
		RedisPassword: getString(env, "REDIS_PASSWORD", ""),

		JWTIssuer:        getString(env, "JWT_ISSUER", "campaign-data-api"),
		JWTAccessSecret:  getString(env, "JWT_SECRET_KEY", ""),
		JWTRefreshSecret: getString(env, "JWT_REFRESH_SECRET_KEY", ""),

		SecureCookies: !debug,

		SheetsClientID:      getString(env, "GSHEET_CLIENT_ID", ""),
		SheetsClientSecret:  getString(env, "GSHEET_CLIENT_SECRET", ""),
		SheetsRefreshToken:  getString(env, "GSHEET_REFRESH_TOKEN", ""),
		SheetsTokenURI:      getString(env, "GSHEET_TOKEN_URI", "https://oauth2.googleapis.com/token"),
		SheetsSpreadsheetID: getString(env, "GSHEET_SHEET_ID", ""),
		DepositRange:        getString(env, "GSHEET_DEPOSIT_RANGE", "'Data Depo RAW'!A:F"),
		GoogleAdsRange:      getString(env, "GSHEET_GOOGLE_ADS_RANGE", "'Google Ads Campaign'!A:I"),
		FacebookAdsRange:    getString(env, "GSHEET_FACEBOOK_ADS_RANGE", "'Meta Ads Campaign'!A:I"),
		TikTokAdsRange:      getString(env, "GSHEET_TIKTOK_ADS_RANGE", "'TikTok Ads Campaign'!A:I"),

		OTELServiceName:          getString(env, "OTEL_SERVICE_NAME", "campaign-data-api"),
		OTELExporterOTLPEndpoint: getString(env, "OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
	}

	var err error
	if cfg.ReadHeaderTimeout, err = getDuration(env, "HTTP_READ_HEADER_TIMEOUT", 5*time.Second); err != nil {
		return cfg, err
	}
	if cfg.ShutdownTimeout, err = getDuration(env, "SHUTDOWN_TIMEOUT", 15*time.Second); err != nil {
		return cfg, err
	}
	if cfg.ShutdownHTTPDrainTimeout, err = getDuration(env, "SHUTDOWN_HTTP_DRAIN_TIMEOUT", 5*time.Second); err != nil {
		return cfg, err
	}
	if cfg.ShutdownObservabilityTimeout, err = getDuration(env, "SHUTDOWN_OBSERVABILITY_TIMEOUT", 5*time.Second); err != nil {
		return cfg, err
	}
	if cfg.RedisDB, err = getInt(env, "REDIS_DB", 0); err != nil {
		return cfg, err
	}

	accessMinutes, err := getInt(env, "ACCESS_TOKEN_EXPIRE_MINUTE", 15)
	if err != nil {
		return cfg, err
	}
	refreshDays, err := getInt(env, "REFRESH_TOKEN_EXPIRE_DAYS", 7)
	if err != nil {
		return cfg, err
	}
	cfg.AccessTokenTTL = time.Duration(accessMinutes) * time.Minute
	cfg.RefreshTokenTTL = time.Duration(refreshDays) * 24 * time.Hour

	if cfg.APIRateLimitRPM, err = getInt(env, "API_RATE_LIMIT_RPM", 300); err != nil {
		return cfg, err
	}
	if cfg.AuthRateLimitRPM, err = getInt(env, "AUTH_RATE_LIMIT_RPM", 30); err != nil {
		return cfg, err
	}
	bodyLimitKB, err := getInt(env, "HTTP_BODY_LIMIT_KB", 1024)
	if err != nil {
		return cfg, err
	}
	cfg.BodyLimitBytes = int64(bodyLimitKB) * 1024

	if cfg.SheetsTimeout, err = getDuration(env, "GSHEET_TIMEOUT", 30*time.Second); err != nil {
		return cfg, err
	}

	if cfg.OTELMetricsEnabled, err = getBool(env, "OTEL_METRICS_ENABLED", false); err != nil {
		return cfg, err
	}
	if cfg.OTELTracesEnabled, err = getBool(env, "OTEL_TRACES_ENABLED", false); err != nil {
		return cfg, err
	}
	if cfg.OTELLogsEnabled, err = getBool(env, "OTEL_LOGS_ENABLED", false); err != nil {
		return cfg, err
	}
	if cfg.OTELExporterOTLPInsecure, err = getBool(env, "OTEL_EXPORTER_OTLP_INSECURE", true); err != nil {
		return cfg, err
	}
	if cfg.OTELMetricsExportInterval, err = getDuration(env, "OTEL_METRICS_EXPORT_INTERVAL", 30*time.Second); err != nil {
		return cfg, err
	}
	if cfg.EnableOTelHTTP, err = getBool(env, "OTEL_HTTP_ENABLED", false); err != nil {
		return cfg, err
	}

	if origins := getString(env, "CORS_ORIGINS", ""); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	cfg.LogLevel = parseLogLevel(getString(env, "LOG_LEVEL", "info"))

	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if len(c.JWTAccessSecret) < 32 {
		return fmt.Errorf("validate config: JWT_SECRET_KEY must be at least 32 bytes")
	}
	if len(c.JWTRefreshSecret) < 32 {
		return fmt.Errorf("validate config: JWT_REFRESH_SECRET_KEY must be at least 32 bytes")
	}
	if c.JWTAccessSecret == c.JWTRefreshSecret {
		return fmt.Errorf("validate config: access and refresh secrets must differ")
	}
	if c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("validate config: token TTLs must be positive")
	}
	if c.DatabaseDSN == "" {
		return fmt.Errorf("validate config: DATABASE_URL is required")
	}
	if c.DatabaseDriver != "sqlite" && c.DatabaseDriver != "postgres" {
		return fmt.Errorf("validate config: DATABASE_DRIVER must be sqlite or postgres")
	}
	return nil
}

func getString(env Env, key, fallback string) string {
	if v := env.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(env Env, key string, fallback int) (int, error) {
	v := env.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return n, nil
}

func getBool(env Env, key string, fallback bool) (bool, error) {
	v := env.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parse %s: %w", key, err)
	}
	return b, nil
}

func getDuration(env Env, key string, fallback time.Duration) (time.Duration, error) {
	v := env.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func parseLogLevel(v string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
