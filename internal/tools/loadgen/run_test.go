package loadgen

import (
	"context"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestRunCountsStatusClasses(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]int{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen[r.URL.Path]++
		mu.Unlock()
		if strings.HasPrefix(r.URL.Path, "/product/detail/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	res, err := Run(context.Background(), Config{
		BaseURL:     srv.URL,
		Profile:     "reads",
		Duration:    400 * time.Millisecond,
		RPS:         50,
		Concurrency: 2,
		MaxID:       3,
		Seed:        7,
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if res.TotalRequests == 0 {
		t.Fatal("expected requests to be sent")
	}
	if res.Status2xx == 0 || res.Status4xx == 0 {
		t.Fatalf("expected both 2xx and 4xx, got %+v", res)
	}
	if res.Status2xx+res.Status4xx+res.Status5xx != res.TotalRequests {
		t.Fatalf("status classes do not add up: %+v", res)
	}
	mu.Lock()
	defer mu.Unlock()
	if seen["/product/list"] == 0 || seen["/products/list"] == 0 {
		t.Fatalf("expected both list prefixes to be hit, got %v", seen)
	}
}

func TestRunUnknownProfile(t *testing.T) {
	if _, err := Run(context.Background(), Config{Profile: "auth"}); err == nil {
		t.Fatal("expected error for unknown profile")
	}
}

func TestErrorHeavyPickerOnlyProducesBadOrMissingIDs(t *testing.T) {
	next := pickerForProfile("error-heavy", 5, rand.New(rand.NewPCG(1, 2)))
	for i := 0; i < 200; i++ {
		p := next()
		if !strings.HasPrefix(p, "/product/") {
			t.Fatalf("unexpected path %q", p)
		}
		for _, id := range []string{"/1", "/2", "/3", "/4", "/5"} {
			if strings.HasSuffix(p, "/detail"+id) {
				t.Fatalf("error-heavy produced an existing id: %q", p)
			}
		}
	}
}

func TestStatusClass(t *testing.T) {
	cases := map[int]string{200: "2xx", 204: "2xx", 302: "3xx", 404: "4xx", 413: "4xx", 500: "5xx", 503: "5xx"}
	for code, want := range cases {
		if got := statusClass(code); got != want {
			t.Fatalf("statusClass(%d)=%s want %s", code, got, want)
		}
	}
}
