package observability

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"
)

// InitTelemetry sets up OpenTelemetry metrics backed by a Prometheus
// registry and returns the meter provider together with the scrape handler.
func InitTelemetry(serviceName string) (*metric.MeterProvider, http.Handler, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	exporter, err := otelprom.New(
		otelprom.WithRegisterer(registry),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(serviceName),
	)

	meterProvider := metric.NewMeterProvider(
		metric.WithReader(exporter),
		metric.WithResource(res),
	)

	// Counters created through the global meter pick up this provider.
	otel.SetMeterProvider(meterProvider)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return meterProvider, handler, nil
}

// InitLogger initializes structured logger
func InitLogger(env string) (*zap.Logger, error) {
	var logger *zap.Logger
	var err error

	if env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}

	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	zap.ReplaceGlobals(logger)

	return logger, nil
}

// Shutdown flushes and stops the metrics pipeline and syncs the logger.
func Shutdown(ctx context.Context, meterProvider *metric.MeterProvider, logger *zap.Logger) error {
	if meterProvider != nil {
		if err := meterProvider.Shutdown(ctx); err != nil {
			logger.Error("failed to shutdown meter provider", zap.Error(err))
			return err
		}
	}

	if logger != nil {
		// Sync can fail on stderr in containers; nothing to do about it.
		_ = logger.Sync()
	}

	return nil
}
