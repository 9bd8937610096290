package observability

import (
	"context"
	"errors"
	"log/slog"

	"github.com/tradersfamily/campaign-data-api/internal/config"

	sdklog "go.opentelemetry.io/otel/sdk/log"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

type Runtime struct {
	MeterProvider  *sdkmetric.MeterProvider
	TracerProvider *sdktrace.TracerProvider
	LoggerProvider *sdklog.LoggerProvider
}

func InitRuntime(ctx context.Context, cfg *config.Config, logger *slog.Logger, lp *sdklog.LoggerProvider) (*Runtime, error) {
	mp, err := InitMetrics(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	tp, err := InitTracing(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return &Runtime{MeterProvider: mp, TracerProvider: tp, LoggerProvider: lp}, nil
}

type shutdowner interface {
	Shutdown(ctx context.Context) error
}

// Shutdown flushes every provider; a failure in one does not skip the rest.
func (r *Runtime) Shutdown(ctx context.Context) error {
	if r == nil {
		return nil
	}
	var providers []shutdowner
	if r.MeterProvider != nil {
		providers = append(providers, r.MeterProvider)
	}
	if r.TracerProvider != nil {
		providers = append(providers, r.TracerProvider)
	}
	if r.LoggerProvider != nil {
		providers = append(providers, r.LoggerProvider)
	}
	var errs []error
	for _, p := range providers {
		if err := p.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
