package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"
)

type mockLimiter struct {
	allow bool
	retry time.Duration
	err   error
}

func (m mockLimiter) Allow(context.Context, string, int, time.Duration) (Decision, error) {
	return Decision{
		Allowed:    m.allow,
		RetryAfter: m.retry,
		Remaining:  0,
		ResetAt:    time.Now().Add(m.retry),
	}, m.err
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(h http.Handler, remoteAddr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/product/list", nil)
	req.RemoteAddr = remoteAddr
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestDistributedRateLimiterFailOpenOnBackendError(t *testing.T) {
	rl := NewDistributedRateLimiter(mockLimiter{err: errors.New("redis down")}, 10, time.Minute, FailOpen, "api")
	if rr := doRequest(rl.Middleware()(okHandler()), "10.0.0.1:1111"); rr.Code != http.StatusOK {
		t.Fatalf("expected fail-open to allow request, got %d", rr.Code)
	}
}

func TestDistributedRateLimiterFailClosedOnBackendError(t *testing.T) {
	rl := NewDistributedRateLimiter(mockLimiter{err: errors.New("redis down")}, 10, time.Minute, FailClosed, "api")
	if rr := doRequest(rl.Middleware()(okHandler()), "10.0.0.1:1111"); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected fail-closed to reject request, got %d", rr.Code)
	}
}

func TestDistributedRateLimiterDeniedSetsRetryAfter(t *testing.T) {
	rl := NewDistributedRateLimiter(mockLimiter{allow: false, retry: 5 * time.Second}, 1, time.Minute, FailClosed, "api")
	rr := doRequest(rl.Middleware()(okHandler()), "10.0.0.1:1111")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", rr.Code)
	}
	if got := rr.Header().Get("Retry-After"); got != "5" {
		t.Fatalf("expected Retry-After=5, got %q", got)
	}
	if got := rr.Header().Get("X-RateLimit-Limit"); got != "1" {
		t.Fatalf("expected X-RateLimit-Limit=1, got %q", got)
	}
	if got := rr.Header().Get("X-RateLimit-Reset"); got == "" {
		t.Fatal("expected X-RateLimit-Reset header")
	} else if _, err := strconv.ParseInt(got, 10, 64); err != nil {
		t.Fatalf("expected numeric X-RateLimit-Reset, got %q", got)
	}
}

func TestLocalRateLimiterEnforcesPerClientWindow(t *testing.T) {
	limiter := NewLocalFixedWindowLimiter().(*localFixedWindowLimiter)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return now }
	h := NewDistributedRateLimiter(limiter, 2, time.Minute, FailClosed, "api").Middleware()(okHandler())

	for i := 0; i < 2; i++ {
		rr := doRequest(h, "10.0.0.1:1111")
		if rr.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, rr.Code)
		}
		if got, want := rr.Header().Get("X-RateLimit-Remaining"), strconv.Itoa(1-i); got != want {
			t.Fatalf("request %d: remaining=%q want %q", i, got, want)
		}
	}
	if rr := doRequest(h, "10.0.0.1:2222"); rr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected third request from same ip to be limited, got %d", rr.Code)
	}
	if rr := doRequest(h, "10.0.0.2:1111"); rr.Code != http.StatusOK {
		t.Fatalf("expected other client to pass, got %d", rr.Code)
	}

	now = now.Add(time.Minute)
	if rr := doRequest(h, "10.0.0.1:1111"); rr.Code != http.StatusOK {
		t.Fatalf("expected new window to allow, got %d", rr.Code)
	}
}
