package health

import (
	"context"
	"time"

	"github.com/sandeepkv93/coffee-catalog-backend/internal/observability"
)

type CheckResult struct {
	Name       string  `json:"name"`
	Healthy    bool    `json:"healthy"`
	Error      string  `json:"error,omitempty"`
	DurationMS float64 `json:"duration_ms"`
}

type Checker interface {
	Check(ctx context.Context) CheckResult
}

type ProbeRunner struct {
	checkers    []Checker
	timeout     time.Duration
	gracePeriod time.Duration
	startedAt   time.Time
}

// NewProbeRunner ignores nil checkers so optional dependencies can be passed
// unconditionally.
func NewProbeRunner(timeout, gracePeriod time.Duration, checkers ...Checker) *ProbeRunner {
	if timeout <= 0 {
		timeout = time.Second
	}
	active := make([]Checker, 0, len(checkers))
	for _, c := range checkers {
		if c != nil {
			active = append(active, c)
		}
	}
	return &ProbeRunner{
		checkers:    active,
		timeout:     timeout,
		gracePeriod: gracePeriod,
		startedAt:   time.Now(),
	}
}

func (r *ProbeRunner) Ready(ctx context.Context) (bool, []CheckResult) {
	if r == nil {
		return true, nil
	}
	if r.gracePeriod > 0 && time.Since(r.startedAt) < r.gracePeriod {
		return false, []CheckResult{{Name: "startup_grace", Healthy: false, Error: "startup grace period active"}}
	}
	results := make([]CheckResult, 0, len(r.checkers))
	allHealthy := true
	for _, c := range r.checkers {
		checkCtx, cancel := context.WithTimeout(ctx, r.timeout)
		start := time.Now()
		res := c.Check(checkCtx)
		elapsed := time.Since(start)
		cancel()

		res.DurationMS = float64(elapsed.Microseconds()) / 1000.0
		outcome := "ready"
		if !res.Healthy {
			outcome = "unready"
			allHealthy = false
		}
		observability.RecordHealthCheckResult(ctx, res.Name, outcome)
		observability.RecordHealthCheckDuration(ctx, res.Name, elapsed)
		results = append(results, res)
	}
	return allHealthy, results
}
