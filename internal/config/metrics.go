package config

import (
	"context"
	"strings"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var (
	configMetricsOnce sync.Once
	configCounter     metric.Int64Counter
)

func recordConfigValidationEvent(ctx context.Context, profile, outcome, errorClass string) {
	configMetricsOnce.Do(func() {
		counter, err := otel.Meter("campaign-data-api").Int64Counter("config.validation.events")
		if err == nil {
			configCounter = counter
		}
	})
	if configCounter == nil {
		return
	}
	configCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("profile", normalizeConfigProfile(profile)),
		attribute.String("outcome", outcome),
		attribute.String("error_class", classLabel(errorClass)),
	))
}

// normalizeConfigProfile collapses anything outside the two known profiles so
// the metric stays low-cardinality even when ENV is garbage.
func normalizeConfigProfile(profile string) string {
	switch strings.TrimSpace(strings.ToLower(profile)) {
	case ProfileDevelopment:
		return ProfileDevelopment
	case ProfileProduction:
		return ProfileProduction
	default:
		return "unknown"
	}
}

func classLabel(class string) string {
	if class == "" {
		return "none"
	}
	return class
}

func classifyConfigLoadError(err error) string {
	if err == nil {
		return "none"
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "validate config:"):
		return "validation"
	case strings.Contains(msg, "parse "):
		return "parse"
	default:
		return "load"
	}
}
