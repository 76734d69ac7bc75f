package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/sandeepkv93/coffee-catalog-backend/internal/health"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/http/handler"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/http/middleware"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/http/response"
)

type Dependencies struct {
	ProductHandler  *handler.ProductHandler
	ImageHandler    *handler.ImageHandler
	CORSOrigins     []string
	APIRateLimitRPM int
	APIRateLimiter  APIRateLimiterFunc
	Readiness       *health.ProbeRunner
	MaxBodyBytes    int64
	EnableOTelHTTP  bool
}

type APIRateLimiterFunc func(http.Handler) http.Handler

const defaultMaxBodyBytes = 16 << 20

// catalogPrefixes are mounted side by side with identical handlers.
var catalogPrefixes = []string{"/product", "/products"}

func NewRouter(dep Dependencies) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.StructuredRequestLogger)
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(dep.CORSOrigins))

	r.Get("/health/live", func(w http.ResponseWriter, r *http.Request) {
		response.JSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		if dep.Readiness == nil {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": []any{}})
			return
		}
		ready, results := dep.Readiness.Ready(r.Context())
		if ready {
			response.JSON(w, r, http.StatusOK, map[string]any{"status": "ready", "checks": results})
			return
		}
		response.Error(w, r, http.StatusServiceUnavailable, "DEPENDENCY_UNREADY", "dependencies are not ready", map[string]any{"checks": results})
	})

	limiter := dep.APIRateLimiter
	if limiter == nil {
		limiter = middleware.NewRateLimiter(dep.APIRateLimitRPM, time.Minute).Middleware()
	}
	maxBody := dep.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}

	r.Group(func(r chi.Router) {
		r.Use(limiter)
		r.Use(middleware.BodyLimit(maxBody))
		for _, prefix := range catalogPrefixes {
			r.Route(prefix, func(r chi.Router) {
				r.Get("/list", dep.ProductHandler.List)
				r.Get("/detail/{id}", dep.ProductHandler.Detail)
				r.Get("/update/{id}", dep.ProductHandler.Update)
				r.Post("/insert", dep.ProductHandler.Insert)
			})
		}
		if dep.ImageHandler != nil {
			r.Get("/images/{name}", dep.ImageHandler.Get)
		}
	})

	var h http.Handler = r
	if dep.EnableOTelHTTP {
		h = otelhttp.NewHandler(r, "http.server")
	}
	return h
}
