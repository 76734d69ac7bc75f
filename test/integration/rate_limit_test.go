package integration

import (
	"net/http"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/sandeepkv93/coffee-catalog-backend/internal/http/middleware"
)

func TestRateLimiterBlocksCatalogButNotHealth(t *testing.T) {
	s := newCatalogTestServer(t, catalogTestServerOptions{rateRPM: 2})

	for i := 0; i < 2; i++ {
		if resp, _ := s.do(t, http.MethodGet, "/product/list", nil); resp.StatusCode != http.StatusOK {
			t.Fatalf("expected 200 on request %d, got %d", i+1, resp.StatusCode)
		}
	}
	resp, _ := s.do(t, http.MethodGet, "/products/list", nil)
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 got %d", resp.StatusCode)
	}
	if resp.Header.Get("Retry-After") == "" {
		t.Fatal("expected Retry-After header")
	}
	if resp, _ := s.do(t, http.MethodGet, "/health/live", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("health must bypass the limiter, got %d", resp.StatusCode)
	}
}

func TestRedisRateLimiterSharedAcrossServers(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter := func() func(http.Handler) http.Handler {
		return middleware.NewDistributedRateLimiter(
			middleware.NewRedisFixedWindowLimiter(client, "catalog-it:rl"),
			3, time.Minute, middleware.FailOpen, "api",
		).Middleware()
	}
	a := newCatalogTestServer(t, catalogTestServerOptions{limiter: limiter()})
	b := newCatalogTestServer(t, catalogTestServerOptions{limiter: limiter()})

	codes := []int{}
	for _, s := range []*catalogTestServer{a, b, a, b} {
		resp, _ := s.do(t, http.MethodGet, "/product/list", nil)
		codes = append(codes, resp.StatusCode)
	}
	if codes[3] != http.StatusTooManyRequests {
		t.Fatalf("expected the shared budget to be exhausted on the fourth call, got %v", codes)
	}

	mr.Close()
	if resp, _ := a.do(t, http.MethodGet, "/product/list", nil); resp.StatusCode != http.StatusOK {
		t.Fatalf("fail-open limiter should allow when redis is down, got %d", resp.StatusCode)
	}
}
