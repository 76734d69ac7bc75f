package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// StructuredRequestLogger writes one slog line per request. Server errors log
// at error level and client errors at warn.
func StructuredRequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}

		attrs := []slog.Attr{
			slog.String("method", r.Method),
			slog.String("route", routeLabel(r)),
			slog.Int("status", status),
			slog.Int64("request_bytes", r.ContentLength),
			slog.Int("response_bytes", ww.BytesWritten()),
			slog.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000.0),
			slog.String("request_id", chimiddleware.GetReqID(r.Context())),
			slog.String("client_ip", r.RemoteAddr),
		}
		// Query strings only matter for the catalog routes, which take ?id=.
		if q := r.URL.RawQuery; q != "" && len(q) <= 64 {
			attrs = append(attrs, slog.String("query", q))
		}
		if ua := r.UserAgent(); ua != "" {
			attrs = append(attrs, slog.String("user_agent", ua))
		}
		slog.LogAttrs(r.Context(), levelForStatus(status), "http.request", attrs...)
	})
}

func levelForStatus(status int) slog.Level {
	switch {
	case status >= http.StatusInternalServerError:
		return slog.LevelError
	case status >= http.StatusBadRequest:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// routeLabel prefers the matched chi pattern so image names do not explode
// log cardinality. Unmatched requests fall back to the raw path.
func routeLabel(r *http.Request) string {
	if rc := chi.RouteContext(r.Context()); rc != nil {
		if p := rc.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}
