package loadgen

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sandeepkv93/coffee-catalog-backend/internal/observability"
)

const defaultBaseURL = "http://localhost:9000"

type Config struct {
	BaseURL     string
	Profile     string
	Duration    time.Duration
	RPS         int
	Concurrency int
	MaxID       int
	Seed        int64
}

type Result struct {
	TotalRequests int64
	Failures      int64
	Status2xx     int64
	Status4xx     int64
	Status5xx     int64
}

// pathPicker returns the next request path; it is only called from the
// dispatch loop, so it need not be safe for concurrent use.
type pathPicker func() string

func Run(ctx context.Context, cfg Config) (Result, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Duration <= 0 {
		cfg.Duration = 10 * time.Second
	}
	if cfg.RPS <= 0 {
		cfg.RPS = 15
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	if cfg.MaxID <= 0 {
		cfg.MaxID = 20
	}
	profile := strings.ToLower(cfg.Profile)
	if profile == "" {
		profile = "mixed"
	}

	next := pickerForProfile(profile, cfg.MaxID, rand.New(rand.NewPCG(uint64(cfg.Seed), uint64(cfg.Seed>>1)|1)))
	if next == nil {
		return Result{}, fmt.Errorf("unknown profile: %s", cfg.Profile)
	}
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	client := &http.Client{Timeout: 5 * time.Second}

	ctx, cancel := context.WithTimeout(ctx, cfg.Duration)
	defer cancel()

	var total, failures, s2xx, s4xx, s5xx atomic.Int64
	jobs := make(chan string, cfg.Concurrency*2)
	var wg sync.WaitGroup

	for i := 0; i < cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+path, nil)
				if err != nil {
					failures.Add(1)
					continue
				}
				resp, err := client.Do(req)
				if err != nil {
					failures.Add(1)
					observability.RecordLoadgenRequest(ctx, "transport_error", profile)
					continue
				}
				_ = resp.Body.Close()
				total.Add(1)
				class := statusClass(resp.StatusCode)
				switch class {
				case "2xx":
					s2xx.Add(1)
				case "4xx":
					s4xx.Add(1)
				case "5xx":
					s5xx.Add(1)
				}
				observability.RecordLoadgenRequest(ctx, class, profile)
			}
		}()
	}

	ticker := time.NewTicker(time.Second / time.Duration(cfg.RPS))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return Result{
				TotalRequests: total.Load(),
				Failures:      failures.Load(),
				Status2xx:     s2xx.Load(),
				Status4xx:     s4xx.Load(),
				Status5xx:     s5xx.Load(),
			}, nil
		case <-ticker.C:
			select {
			case jobs <- next():
			case <-ctx.Done():
			}
		}
	}
}

func pickerForProfile(profile string, maxID int, rng *rand.Rand) pathPicker {
	detail := func() string { return fmt.Sprintf("/product/detail/%d", rng.IntN(maxID)+1) }
	switch profile {
	case "reads":
		paths := []func() string{
			func() string { return "/product/list" },
			func() string { return "/products/list" },
			detail,
		}
		i := 0
		return func() string {
			p := paths[i%len(paths)]()
			i++
			return p
		}
	case "mixed":
		return func() string {
			switch n := rng.IntN(10); {
			case n < 4:
				return "/product/list"
			case n < 8:
				return detail()
			case n < 9:
				return fmt.Sprintf("/product/update/%d", rng.IntN(maxID)+1)
			default:
				return "/health/ready"
			}
		}
	case "error-heavy":
		bad := []string{"/product/detail/abc", "/product/detail/-1", "/product/update/0x1"}
		return func() string {
			if rng.IntN(4) == 0 {
				return fmt.Sprintf("/product/detail/%d", maxID+rng.IntN(1000)+1)
			}
			return bad[rng.IntN(len(bad))]
		}
	default:
		return nil
	}
}

func statusClass(code int) string {
	switch {
	case code >= 200 && code < 300:
		return "2xx"
	case code >= 300 && code < 400:
		return "3xx"
	case code >= 400 && code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}
