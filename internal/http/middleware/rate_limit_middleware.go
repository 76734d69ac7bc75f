package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/sandeepkv93/coffee-catalog-backend/internal/http/response"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/observability"
)

type Decision struct {
	Allowed    bool
	RetryAfter time.Duration
	Remaining  int
	ResetAt    time.Time
}

type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Decision, error)
}

type FailureMode string

const (
	FailOpen   FailureMode = "fail_open"
	FailClosed FailureMode = "fail_closed"
)

type fixedWindow struct {
	count       int
	windowStart time.Time
}

type localFixedWindowLimiter struct {
	mu      sync.Mutex
	store   map[string]*fixedWindow
	cleanup time.Time
	now     func() time.Time
}

type RateLimiter struct {
	limiter Limiter
	limit   int
	window  time.Duration
	mode    FailureMode
	scope   string
}

func NewLocalFixedWindowLimiter() Limiter {
	return &localFixedWindowLimiter{
		store:   make(map[string]*fixedWindow),
		cleanup: time.Now().Add(time.Minute),
		now:     time.Now,
	}
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return NewDistributedRateLimiter(NewLocalFixedWindowLimiter(), limit, window, FailClosed, "api")
}

func NewDistributedRateLimiter(limiter Limiter, limit int, window time.Duration, mode FailureMode, scope string) *RateLimiter {
	if scope == "" {
		scope = "api"
	}
	return &RateLimiter{
		limiter: limiter,
		limit:   limit,
		window:  window,
		mode:    mode,
		scope:   scope,
	}
}

// Middleware limits per client address. Backend failures either pass the
// request through or reject it, depending on the failure mode.
func (rl *RateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			decision, err := rl.limiter.Allow(ctx, clientIPKey(r), rl.limit, rl.window)
			switch {
			case err != nil && rl.mode == FailOpen:
				observability.RecordRateLimitDecision(ctx, rl.scope, "backend_error_allow")
				slog.WarnContext(ctx, "rate limiter backend unavailable, allowing request",
					"scope", rl.scope,
					"error", err.Error(),
				)
				next.ServeHTTP(w, r)
			case err != nil:
				observability.RecordRateLimitDecision(ctx, rl.scope, "backend_error_deny")
				rl.reject(w, r, rl.window)
			case !decision.Allowed:
				observability.RecordRateLimitDecision(ctx, rl.scope, "deny")
				rl.writeQuota(w, decision)
				rl.reject(w, r, decision.RetryAfter)
			default:
				observability.RecordRateLimitDecision(ctx, rl.scope, "allow")
				rl.writeQuota(w, decision)
				next.ServeHTTP(w, r)
			}
		})
	}
}

func (rl *RateLimiter) reject(w http.ResponseWriter, r *http.Request, retryAfter time.Duration) {
	w.Header().Set("Retry-After", retryAfterHeader(retryAfter))
	response.Error(w, r, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests", nil)
}

func (rl *RateLimiter) writeQuota(w http.ResponseWriter, d Decision) {
	h := w.Header()
	h.Set("X-RateLimit-Limit", strconv.Itoa(rl.limit))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(max(d.Remaining, 0)))
	if !d.ResetAt.IsZero() {
		h.Set("X-RateLimit-Reset", strconv.FormatInt(d.ResetAt.Unix(), 10))
	}
}

func (rl *localFixedWindowLimiter) Allow(_ context.Context, key string, limit int, window time.Duration) (Decision, error) {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if now.After(rl.cleanup) {
		for k, v := range rl.store {
			if now.Sub(v.windowStart) > 2*window {
				delete(rl.store, k)
			}
		}
		rl.cleanup = now.Add(window)
	}

	entry, ok := rl.store[key]
	if !ok || now.Sub(entry.windowStart) >= window {
		entry = &fixedWindow{windowStart: now}
		rl.store[key] = entry
	}
	resetAt := entry.windowStart.Add(window)
	if entry.count >= limit {
		return Decision{Allowed: false, RetryAfter: max(resetAt.Sub(now), 0), ResetAt: resetAt}, nil
	}
	entry.count++
	return Decision{Allowed: true, Remaining: limit - entry.count, ResetAt: resetAt}, nil
}

func clientIPKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return r.RemoteAddr
}

func retryAfterHeader(d time.Duration) string {
	seconds := int(d.Round(time.Second).Seconds())
	if seconds <= 0 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}
