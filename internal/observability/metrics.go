package observability

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/sandeepkv93/coffee-catalog-backend/internal/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/exemplar"
)

type AppMetrics struct {
	productOperationCounter  metric.Int64Counter
	productOperationDuration metric.Float64Histogram
	repositoryOpsCounter     metric.Int64Counter
	imageIngestCounter       metric.Int64Counter
	imageIngestBytes         metric.Float64Histogram
	productListCacheCounter  metric.Int64Counter
	imageScanCounter         metric.Int64Counter
	healthCheckResultCounter metric.Int64Counter
	healthCheckDuration      metric.Float64Histogram
	databaseStartupCounter   metric.Int64Counter
	databaseStartupDuration  metric.Float64Histogram
	rateLimitDecisionCounter metric.Int64Counter
	httpMiddlewareValidation metric.Int64Counter
	toolCommandRuns          metric.Int64Counter
	loadgenRequestsCounter   metric.Int64Counter
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

	res, err := newResource(ctx, cfg, "metric")
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.OTELMetricsExportInterval))
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(reader),
		sdkmetric.WithExemplarFilter(exemplar.TraceBasedFilter),
		sdkmetric.WithView(sdkmetric.NewView(
			sdkmetric.Instrument{Name: "product.image.ingest.bytes"},
			sdkmetric.Stream{
				Aggregation: sdkmetric.AggregationExplicitBucketHistogram{
					Boundaries: []float64{1 << 10, 16 << 10, 64 << 10, 256 << 10, 1 << 20, 4 << 20, 16 << 20},
				},
			},
		)),
	)
	otel.SetMeterProvider(mp)

	m, err := newAppMetrics(mp.Meter(instrumentationName))
	if err != nil {
		_ = mp.Shutdown(ctx)
		return nil, err
	}
	metricsMu.Lock()
	appMetrics = m
	metricsMu.Unlock()

	logger.Info("otel metrics initialized", "endpoint", cfg.OTELExporterOTLPEndpoint)
	return mp, nil
}

func newAppMetrics(meter metric.Meter) (*AppMetrics, error) {
	var firstErr error
	counter := func(name, desc string) metric.Int64Counter {
		c, err := meter.Int64Counter(name, metric.WithDescription(desc))
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return c
	}
	hist := func(name, unit, desc string) metric.Float64Histogram {
		h, err := meter.Float64Histogram(name, metric.WithUnit(unit), metric.WithDescription(desc))
		if err != nil && firstErr == nil {
			firstErr = err
		}
		return h
	}

	m := &AppMetrics{
		productOperationCounter:  counter("product.operation.events", "Catalog service operations by outcome"),
		productOperationDuration: hist("product.operation.duration", "s", "Duration of catalog service operations in seconds"),
		repositoryOpsCounter:     counter("repository.operations", "Repository calls by entity, operation and outcome"),
		imageIngestCounter:       counter("product.image.ingest.events", "Inbound product image decode/store attempts"),
		imageIngestBytes:         hist("product.image.ingest.bytes", "By", "Decoded product image size in bytes"),
		productListCacheCounter:  counter("product.list.cache.events", "Product list cache hits, misses and invalidations"),
		imageScanCounter:         counter("image.scan.results", "Image directory scans by outcome"),
		healthCheckResultCounter: counter("health.check.results", "Readiness dependency check results"),
		healthCheckDuration:      hist("health.check.duration", "s", "Duration of health dependency checks in seconds"),
		databaseStartupCounter:   counter("database.startup.events", "Database connect/migrate/seed events"),
		databaseStartupDuration:  hist("database.startup.duration", "s", "Duration of database startup phases in seconds"),
		rateLimitDecisionCounter: counter("http.rate_limit.decisions", "Rate limiter decisions"),
		httpMiddlewareValidation: counter("http.middleware.validation.events", "Request validation events emitted by middleware"),
		toolCommandRuns:          counter("tool.command.runs", "CLI tool command executions"),
		loadgenRequestsCounter:   counter("loadgen.requests", "Requests issued by the load generator"),
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return m, nil
}

func currentMetrics() *AppMetrics {
	metricsMu.RLock()
	defer metricsMu.RUnlock()
	return appMetrics
}

func RecordProductOperation(ctx context.Context, operation, outcome string, duration time.Duration) {
	m := currentMetrics()
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	)
	m.productOperationCounter.Add(ctx, 1, attrs)
	m.productOperationDuration.Record(ctx, duration.Seconds(), attrs)
}

func RecordRepositoryOperation(ctx context.Context, entity, operation, outcome string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.repositoryOpsCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("entity", entity),
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

func RecordImageIngest(ctx context.Context, backend, outcome string, size int) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.imageIngestCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("outcome", outcome),
	))
	if size > 0 {
		m.imageIngestBytes.Record(ctx, float64(size), metric.WithAttributes(attribute.String("backend", backend)))
	}
}

func RecordProductListCacheEvent(ctx context.Context, backend, outcome string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.productListCacheCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("outcome", outcome),
	))
}

func RecordImageScan(ctx context.Context, outcome string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.imageScanCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}

func RecordHealthCheckResult(ctx context.Context, check, outcome string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.healthCheckResultCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("check", check),
		attribute.String("outcome", outcome),
	))
}

func RecordHealthCheckDuration(ctx context.Context, check string, duration time.Duration) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.healthCheckDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("check", check),
	))
}

func RecordDatabaseStartupEvent(ctx context.Context, phase, outcome string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.databaseStartupCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("phase", phase),
		attribute.String("outcome", outcome),
	))
}

func RecordDatabaseStartupDuration(ctx context.Context, phase string, duration time.Duration) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.databaseStartupDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("phase", phase),
	))
}

func RecordRateLimitDecision(ctx context.Context, scope, outcome string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.rateLimitDecisionCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("scope", scope),
		attribute.String("outcome", outcome),
	))
}

func RecordMiddlewareValidationEvent(ctx context.Context, middleware, outcome string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.httpMiddlewareValidation.Add(ctx, 1, metric.WithAttributes(
		attribute.String("middleware", middleware),
		attribute.String("outcome", outcome),
	))
}

func RecordToolCommandRun(ctx context.Context, tool, command, outcome string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.toolCommandRuns.Add(ctx, 1, metric.WithAttributes(
		attribute.String("tool", tool),
		attribute.String("command", command),
		attribute.String("outcome", outcome),
	))
}

func RecordLoadgenRequest(ctx context.Context, statusClass, profile string) {
	m := currentMetrics()
	if m == nil {
		return
	}
	m.loadgenRequestsCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.String("status_class", statusClass),
		attribute.String("profile", profile),
	))
}
