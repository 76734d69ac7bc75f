package observability

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var redisInstrumentationOnce sync.Once

// InstrumentRedisClient installs command metrics on the cache client. Only the
// first call per process has an effect.
func InstrumentRedisClient(client redis.UniversalClient, logger *slog.Logger) {
	if client == nil {
		return
	}
	if logger == nil {
		logger = slog.Default()
	}

	redisInstrumentationOnce.Do(func() {
		hook, err := newRedisMetricsHook(otel.Meter(instrumentationName), client)
		if err != nil {
			logger.Warn("redis observability instrumentation disabled", "error", err)
			return
		}
		client.AddHook(hook)
		logger.Info("redis observability instrumentation enabled")
	})
}

type redisMetricsHook struct {
	cmdTotal   metric.Int64Counter
	cmdErrors  metric.Int64Counter
	cmdLatency metric.Float64Histogram

	getHits   atomic.Int64
	getMisses atomic.Int64
}

func newRedisMetricsHook(meter metric.Meter, client redis.UniversalClient) (*redisMetricsHook, error) {
	cmdTotal, err := meter.Int64Counter(
		"redis.command.total",
		metric.WithDescription("Total number of Redis commands executed"),
	)
	if err != nil {
		return nil, err
	}
	cmdErrors, err := meter.Int64Counter(
		"redis.command.errors",
		metric.WithDescription("Total number of Redis command errors"),
	)
	if err != nil {
		return nil, err
	}
	cmdLatency, err := meter.Float64Histogram(
		"redis.command.duration",
		metric.WithUnit("s"),
		metric.WithDescription("Redis command latency in seconds"),
	)
	if err != nil {
		return nil, err
	}
	poolSaturation, err := meter.Float64ObservableGauge(
		"redis.pool.saturation",
		metric.WithUnit("1"),
		metric.WithDescription("Redis pool saturation ratio (used_conns / total_conns)"),
	)
	if err != nil {
		return nil, err
	}
	hitRatio, err := meter.Float64ObservableGauge(
		"redis.keyspace.hit_ratio",
		metric.WithUnit("1"),
		metric.WithDescription("GET hit ratio observed by the client"),
	)
	if err != nil {
		return nil, err
	}

	hook := &redisMetricsHook{cmdTotal: cmdTotal, cmdErrors: cmdErrors, cmdLatency: cmdLatency}

	_, err = meter.RegisterCallback(func(_ context.Context, observer metric.Observer) error {
		if stats := client.PoolStats(); stats != nil && stats.TotalConns > 0 {
			used := stats.TotalConns - stats.IdleConns
			observer.ObserveFloat64(poolSaturation, clampRatio(float64(used)/float64(stats.TotalConns)))
		}
		hits, misses := hook.getHits.Load(), hook.getMisses.Load()
		if hits+misses > 0 {
			observer.ObserveFloat64(hitRatio, clampRatio(float64(hits)/float64(hits+misses)))
		}
		return nil
	}, poolSaturation, hitRatio)
	if err != nil {
		return nil, err
	}
	return hook, nil
}

func (h *redisMetricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h *redisMetricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmd)
		h.observe(ctx, cmd, err, time.Since(start))
		return err
	}
}

func (h *redisMetricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		start := time.Now()
		err := next(ctx, cmds)
		elapsed := time.Since(start)
		for _, cmd := range cmds {
			h.observe(ctx, cmd, cmd.Err(), elapsed)
		}
		return err
	}
}

func (h *redisMetricsHook) observe(ctx context.Context, cmd redis.Cmder, err error, elapsed time.Duration) {
	command := strings.ToLower(cmd.Name())
	status := redisCommandStatus(err)
	attrs := metric.WithAttributes(
		attribute.String("command", command),
		attribute.String("status", status),
	)
	h.cmdTotal.Add(ctx, 1, attrs)
	h.cmdLatency.Record(ctx, elapsed.Seconds(), attrs)

	if err != nil && !errors.Is(err, redis.Nil) {
		h.cmdErrors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("command", command),
			attribute.String("error_type", classifyRedisError(err)),
		))
	}
	if command == "get" {
		switch status {
		case "success":
			h.getHits.Add(1)
		case "miss":
			h.getMisses.Add(1)
		}
	}
}

func redisCommandStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, redis.Nil):
		return "miss"
	default:
		return "error"
	}
}

func classifyRedisError(err error) string {
	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "timeout"):
		return "timeout"
	case strings.Contains(errStr, "connection"):
		return "connection"
	default:
		return "other"
	}
}

func clampRatio(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
