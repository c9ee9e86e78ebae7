package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/inkwellhq/inkwell/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

const meterName = "inkwell"

type AppMetrics struct {
	authLoginCounter    metric.Int64Counter
	authRegisterCounter metric.Int64Counter
	authRefreshCounter  metric.Int64Counter
	authLogoutCounter   metric.Int64Counter
}

var (
	metricsMu  sync.RWMutex
	appMetrics *AppMetrics
)

func InitMetrics(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*sdkmetric.MeterProvider, error) {
	if !cfg.OTELMetricsEnabled {
		mp := sdkmetric.NewMeterProvider()
		otel.SetMeterProvider(mp)
		logger.Info("otel metrics disabled")
		return mp, nil
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.OTELExporterOTLPEndpoint)}
	if cfg.OTELExporterOTLPInsecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create otlp metric exporter: %w", err)
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			attribute.String("service.name", cfg.OTELServiceName),
			attribute.String("deployment.environment", cfg.OTELEnvironment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create metric resource: %w", err)
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.OTELMetricsExportInterval))
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
	)
	otel.SetMeterProvider(mp)

	meter := mp.Meter(meterName)
	loginCounter, err := meter.Int64Counter("auth.login.attempts")
	if err != nil {
		return nil, err
	}
	registerCounter, err := meter.Int64Counter("auth.register.attempts")
	if err != nil {
		return nil, err
	}
	refreshCounter, err := meter.Int64Counter("auth.refresh.attempts")
	if err != nil {
		return nil, err
	}
	logoutCounter, err := meter.Int64Counter("auth.logout.attempts")
	if err != nil {
		return nil, err
	}

	metricsMu.Lock()
	appMetrics = &AppMetrics{
		authLoginCounter:    loginCounter,
		authRegisterCounter: registerCounter,
		authRefreshCounter:  refreshCounter,
		authLogoutCounter:   logoutCounter,
	}
	metricsMu.Unlock()

	logger.Info("otel metrics initialized", "endpoint", cfg.OTELExporterOTLPEndpoint)
	return mp, nil
}

func RecordAuthLogin(status string) {
	addAppCounter(func(m *AppMetrics) metric.Int64Counter { return m.authLoginCounter },
		attribute.String("status", status))
}

func RecordAuthRegister(status string) {
	addAppCounter(func(m *AppMetrics) metric.Int64Counter { return m.authRegisterCounter },
		attribute.String("status", status))
}

func RecordAuthRefresh(status string) {
	addAppCounter(func(m *AppMetrics) metric.Int64Counter { return m.authRefreshCounter },
		attribute.String("status", status))
}

func RecordAuthLogout(status string) {
	addAppCounter(func(m *AppMetrics) metric.Int64Counter { return m.authLogoutCounter },
		attribute.String("status", status))
}

func addAppCounter(pick func(*AppMetrics) metric.Int64Counter, attrs ...attribute.KeyValue) {
	metricsMu.RLock()
	m := appMetrics
	metricsMu.RUnlock()
	if m == nil {
		return
	}
	counter := pick(m)
	if counter == nil {
		return
	}
	counter.Add(context.Background(), 1, metric.WithAttributes(attrs...))
}

var (
	sessionReadOnce    sync.Once
	sessionReadCounter metric.Int64Counter
)

// RecordSessionRead tracks session recovery outcomes at the guard:
// hit, miss, refreshed, denied.
func RecordSessionRead(ctx context.Context, outcome, surface string) {
	sessionReadOnce.Do(func() {
		counter, err := otel.Meter(meterName).Int64Counter("session.read.outcomes")
		if err == nil {
			sessionReadCounter = counter
		}
	})
	if sessionReadCounter == nil {
		return
	}
	sessionReadCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", outcome),
		attribute.String("surface", surface),
	))
}

var (
	repoOpOnce    sync.Once
	repoOpCounter metric.Int64Counter
)

func RecordRepositoryOperation(ctx context.Context, entity, operation, result string) {
	repoOpOnce.Do(func() {
		counter, err := otel.Meter(meterName).Int64Counter("repository.operations")
		if err == nil {
			repoOpCounter = counter
		}
	})
	if repoOpCounter == nil {
		return
	}
	repoOpCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("operation", operation),
		attribute.String("result", result),
	))
}

var (
	rateLimitOnce    sync.Once
	rateLimitCounter metric.Int64Counter
)

func RecordRateLimitDecision(ctx context.Context, scope, decision string) {
	rateLimitOnce.Do(func() {
		counter, err := otel.Meter(meterName).Int64Counter("ratelimit.decisions")
		if err == nil {
			rateLimitCounter = counter
		}
	})
	if rateLimitCounter == nil {
		return
	}
	rateLimitCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("scope", scope),
		attribute.String("decision", decision),
	))
}
