package middleware

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sandeepkv93/coffee-catalog-backend/internal/observability"
)

const imagePathPrefix = "/images/"

func RequestID(next http.Handler) http.Handler { return chimiddleware.RequestID(next) }

// SecurityHeaders marks JSON responses uncacheable. Stored product images are
// immutable once written, so they may be cached by browsers.
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		if strings.HasPrefix(r.URL.Path, imagePathPrefix) {
			h.Set("Cache-Control", "public, max-age=86400")
			h.Set("Content-Security-Policy", "default-src 'none'; img-src 'self'; sandbox")
			h.Set("Cross-Origin-Resource-Policy", "cross-origin")
		} else {
			h.Set("Cache-Control", "no-store")
			h.Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			h.Set("X-Frame-Options", "DENY")
		}
		if r.TLS != nil {
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}
		next.ServeHTTP(w, r)
	})
}

// CORS allows the configured storefront origins. A single "*" entry allows
// any origin. Rate limit headers are exposed so clients can back off.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	allowAny := false
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			allowAny = true
			continue
		}
		allowed[o] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin == "" {
				next.ServeHTTP(w, r)
				return
			}
			h := w.Header()
			h.Add("Vary", "Origin")
			_, known := allowed[origin]
			if allowAny || known {
				observability.RecordMiddlewareValidationEvent(r.Context(), "cors", "allow_origin")
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Expose-Headers", "X-Request-Id, X-RateLimit-Limit, X-RateLimit-Remaining, X-RateLimit-Reset, Retry-After")
			} else {
				observability.RecordMiddlewareValidationEvent(r.Context(), "cors", "rejected_origin")
			}
			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				observability.RecordMiddlewareValidationEvent(r.Context(), "cors", "preflight")
				h.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-Id")
				h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				h.Set("Access-Control-Max-Age", "600")
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// BodyLimit caps request bodies on methods that carry one. Inserts carry the
// whole image inline, so the limit bounds the largest accepted image.
func BodyLimit(maxBytes int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}
			if r.ContentLength > maxBytes {
				observability.RecordMiddlewareValidationEvent(r.Context(), "body_limit", "rejected_declared_length")
			}
			r.Body = &bodyLimitObserver{
				ReadCloser: http.MaxBytesReader(w, r.Body, maxBytes),
				ctx:        r.Context(),
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bodyLimitObserver records at most one validation event per request body.
type bodyLimitObserver struct {
	io.ReadCloser
	ctx     context.Context
	emitted bool
}

func (o *bodyLimitObserver) Read(p []byte) (int, error) {
	n, err := o.ReadCloser.Read(p)
	if err == nil || errors.Is(err, io.EOF) || o.emitted {
		return n, err
	}
	o.emitted = true
	outcome := "read_error"
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		outcome = "rejected_too_large"
	}
	observability.RecordMiddlewareValidationEvent(o.ctx, "body_limit", outcome)
	return n, err
}
