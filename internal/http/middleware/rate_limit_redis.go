package middleware

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
)

var redisFixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {current, ttl}
`)

type RedisFixedWindowLimiter struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisFixedWindowLimiter(client redis.UniversalClient, prefix string) *RedisFixedWindowLimiter {
	if prefix == "" {
		prefix = "rl"
	}
	return &RedisFixedWindowLimiter{client: client, prefix: prefix}
}

func (l *RedisFixedWindowLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error) {
	if l.client == nil {
		return Decision{}, errors.New("redis client is nil")
	}
	if key == "" {
		key = "unknown"
	}
	windowMS := int64(window / time.Millisecond)
	if windowMS <= 0 {
		windowMS = 1000
	}
	raw, err := redisFixedWindowScript.Run(ctx, l.client, []string{l.prefix + ":" + key}, windowMS).Result()
	if err != nil {
		return Decision{}, err
	}
	count, ttlMS, err := decodeWindowReply(raw)
	if err != nil {
		return Decision{}, err
	}
	if ttlMS <= 0 {
		ttlMS = windowMS
	}

	retryAfter := time.Duration(ttlMS) * time.Millisecond
	d := Decision{
		Allowed:   count <= int64(limit),
		Remaining: int(max(int64(limit)-count, 0)),
		ResetAt:   time.Now().Add(retryAfter),
	}
	if !d.Allowed {
		d.RetryAfter = retryAfter
	}
	return d, nil
}

// decodeWindowReply unpacks the {count, pttl} pair returned by the script.
func decodeWindowReply(raw any) (count, ttlMS int64, err error) {
	values, ok := raw.([]any)
	if !ok || len(values) != 2 {
		return 0, 0, fmt.Errorf("unexpected redis script reply %T", raw)
	}
	if count, err = parseRedisInt64(values[0]); err != nil {
		return 0, 0, fmt.Errorf("window count: %w", err)
	}
	if ttlMS, err = parseRedisInt64(values[1]); err != nil {
		return 0, 0, fmt.Errorf("window ttl: %w", err)
	}
	return count, ttlMS, nil
}

func parseRedisInt64(v any) (int64, error) {
	switch n := v.(type) {
	case int64:
		return n, nil
	case int:
		return int64(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, fmt.Errorf("redis integer overflows int64: %d", n)
		}
		return int64(n), nil
	default:
		return 0, fmt.Errorf("unexpected redis reply type %T", v)
	}
}
