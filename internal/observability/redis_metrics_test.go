package observability

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestRedisMetricsHookCountsCommandsAndMisses(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	hook, err := newRedisMetricsHook(provider.Meter("redis-test"), client)
	if err != nil {
		t.Fatalf("new hook: %v", err)
	}
	client.AddHook(hook)

	if err := client.Set(ctx, "k", "v", 0).Err(); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := client.Get(ctx, "k").Err(); err != nil {
		t.Fatalf("get: %v", err)
	}
	if err := client.Get(ctx, "missing").Err(); !errors.Is(err, redis.Nil) {
		t.Fatalf("expected redis.Nil, got %v", err)
	}

	if hook.getHits.Load() != 1 || hook.getMisses.Load() != 1 {
		t.Fatalf("unexpected hit/miss counts: hits=%d misses=%d", hook.getHits.Load(), hook.getMisses.Load())
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("collect: %v", err)
	}
	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "redis.command.total" {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			if !ok {
				t.Fatalf("unexpected data type %T", m.Data)
			}
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
		}
	}
	if total < 3 {
		t.Fatalf("expected at least 3 commands recorded, got %d", total)
	}
}

func TestRedisCommandStatus(t *testing.T) {
	if got := redisCommandStatus(nil); got != "success" {
		t.Fatalf("nil: got %q", got)
	}
	if got := redisCommandStatus(redis.Nil); got != "miss" {
		t.Fatalf("redis.Nil: got %q", got)
	}
	if got := redisCommandStatus(errors.New("i/o timeout")); got != "error" {
		t.Fatalf("error: got %q", got)
	}
	if got := classifyRedisError(errors.New("i/o timeout")); got != "timeout" {
		t.Fatalf("classify: got %q", got)
	}
}
