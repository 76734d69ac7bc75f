package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
)

type recordingHandler struct {
	mu      sync.Mutex
	records []slog.Record
}

func (h *recordingHandler) Enabled(context.Context, slog.Level) bool { return true }
func (h *recordingHandler) Handle(_ context.Context, r slog.Record) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, r)
	return nil
}
func (h *recordingHandler) WithAttrs([]slog.Attr) slog.Handler { return h }
func (h *recordingHandler) WithGroup(string) slog.Handler      { return h }

func captureDefaultLogger(t *testing.T) *recordingHandler {
	t.Helper()
	orig := slog.Default()
	h := &recordingHandler{}
	slog.SetDefault(slog.New(h))
	t.Cleanup(func() { slog.SetDefault(orig) })
	return h
}

func attrsOf(rec slog.Record) map[string]string {
	out := map[string]string{}
	rec.Attrs(func(a slog.Attr) bool {
		out[a.Key] = a.Value.String()
		return true
	})
	return out
}

func TestStructuredRequestLoggerCatalogRoutes(t *testing.T) {
	logs := captureDefaultLogger(t)

	r := chi.NewRouter()
	r.Use(StructuredRequestLogger)
	r.Get("/product/detail", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("id") == "404" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(`{"id":1}`))
	})
	r.Post("/product/insert", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusInternalServerError) })
	r.Get("/images/{name}", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })

	cases := []struct {
		method    string
		target    string
		wantLevel slog.Level
		wantRoute string
		wantQuery string
	}{
		{http.MethodGet, "/product/detail?id=1", slog.LevelInfo, "/product/detail", "id=1"},
		{http.MethodGet, "/product/detail?id=404", slog.LevelWarn, "/product/detail", "id=404"},
		{http.MethodPost, "/product/insert", slog.LevelError, "/product/insert", ""},
		{http.MethodGet, "/images/product_7.jpg", slog.LevelInfo, "/images/{name}", ""},
		{http.MethodGet, "/nope", slog.LevelWarn, "/nope", ""},
	}
	for _, tc := range cases {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tc.method, tc.target, nil))
	}

	if len(logs.records) != len(cases) {
		t.Fatalf("expected %d records, got %d", len(cases), len(logs.records))
	}
	for i, tc := range cases {
		rec := logs.records[i]
		attrs := attrsOf(rec)
		if rec.Level != tc.wantLevel {
			t.Errorf("%s %s: level=%v want %v", tc.method, tc.target, rec.Level, tc.wantLevel)
		}
		if attrs["route"] != tc.wantRoute {
			t.Errorf("%s %s: route=%q want %q", tc.method, tc.target, attrs["route"], tc.wantRoute)
		}
		if attrs["query"] != tc.wantQuery {
			t.Errorf("%s %s: query=%q want %q", tc.method, tc.target, attrs["query"], tc.wantQuery)
		}
	}
	if attrs := attrsOf(logs.records[0]); attrs["response_bytes"] != "8" || attrs["duration_ms"] == "" {
		t.Fatalf("expected size and duration attrs, got %+v", attrs)
	}
}

func TestStructuredRequestLoggerDefaultsStatusTo200(t *testing.T) {
	logs := captureDefaultLogger(t)

	h := StructuredRequestLogger(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))

	if len(logs.records) != 1 {
		t.Fatalf("expected one log record, got %d", len(logs.records))
	}
	attrs := attrsOf(logs.records[0])
	if attrs["status"] != "200" || attrs["route"] != "/health/live" {
		t.Fatalf("unexpected attrs %+v", attrs)
	}
}
