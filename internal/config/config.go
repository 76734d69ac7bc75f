package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Env      string
	HTTPPort string

	DatabaseDriver string
	DatabaseURL    string

	ImageDirectory      string
	ImageStorageBackend string
	MinIOEndpoint       string
	MinIOAccessKey      string
	MinIOSecretKey      string
	MinIOBucket         string
	MinIOUseSSL         bool

	ProductListCacheEnabled bool
	ProductListCacheBackend string
	ProductListCacheTTL     time.Duration
	RedisAddr               string
	RedisPassword           string
	RedisDB                 int
	RedisKeyPrefix          string

	CORSAllowedOrigins  []string
	APIRateLimitPerMin  int
	RateLimitBackend    string
	MaxRequestBodyBytes int64

	OTELServiceName           string
	OTELEnvironment           string
	OTELExporterOTLPEndpoint  string
	OTELExporterOTLPInsecure  bool
	OTELMetricsExportInterval time.Duration
	OTELTraceSamplingRatio    float64
	OTELMetricsEnabled        bool
	OTELTracingEnabled        bool
	OTELLogsEnabled           bool
	OTELLogLevel              string

	ReadinessProbeTimeout        time.Duration
	ShutdownTimeout              time.Duration
	ShutdownHTTPDrainTimeout     time.Duration
	ShutdownObservabilityTimeout time.Duration
}

func Load() (*Config, error) {
	env := getEnv("APP_ENV", "development")
	cfg := &Config{
		Env:      env,
		HTTPPort: getEnv("HTTP_PORT", "9000"),

		DatabaseDriver: strings.ToLower(getEnv("DATABASE_DRIVER", "sqlite")),
		DatabaseURL:    getEnv("DATABASE_URL", "file:catalog.db?_foreign_keys=on"),

		ImageDirectory:      strings.TrimSpace(os.Getenv("IMAGE_DIRECTORY")),
		ImageStorageBackend: strings.ToLower(getEnv("IMAGE_STORAGE_BACKEND", "local")),
		MinIOEndpoint:       os.Getenv("MINIO_ENDPOINT"),
		MinIOAccessKey:      os.Getenv("MINIO_ACCESS_KEY"),
		MinIOSecretKey:      os.Getenv("MINIO_SECRET_KEY"),
		MinIOBucket:         getEnv("MINIO_BUCKET", "product-images"),
		MinIOUseSSL:         getEnvBool("MINIO_USE_SSL", false),

		ProductListCacheEnabled: getEnvBool("PRODUCT_LIST_CACHE_ENABLED", false),
		ProductListCacheBackend: strings.ToLower(getEnv("PRODUCT_LIST_CACHE_BACKEND", "memory")),
		RedisAddr:               getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:           os.Getenv("REDIS_PASSWORD"),
		RedisDB:                 getEnvInt("REDIS_DB", 0),
		RedisKeyPrefix:          getEnv("REDIS_KEY_PREFIX", "catalog"),

		CORSAllowedOrigins:  splitCSV(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000")),
		APIRateLimitPerMin:  getEnvInt("API_RATE_LIMIT_PER_MIN", 600),
		RateLimitBackend:    strings.ToLower(getEnv("RATE_LIMIT_BACKEND", "memory")),
		MaxRequestBodyBytes: int64(getEnvInt("MAX_REQUEST_BODY_BYTES", 16<<20)),

		OTELServiceName:          getEnv("OTEL_SERVICE_NAME", "coffee-catalog-backend"),
		OTELEnvironment:          getEnv("OTEL_ENVIRONMENT", env),
		OTELExporterOTLPEndpoint: getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTELExporterOTLPInsecure: getEnvBool("OTEL_EXPORTER_OTLP_INSECURE", true),
		OTELTraceSamplingRatio:   getEnvFloat("OTEL_TRACE_SAMPLING_RATIO", 1.0),
		OTELMetricsEnabled:       getEnvBool("OTEL_METRICS_ENABLED", false),
		OTELTracingEnabled:       getEnvBool("OTEL_TRACING_ENABLED", false),
		OTELLogsEnabled:          getEnvBool("OTEL_LOGS_ENABLED", false),
		OTELLogLevel:             strings.ToLower(getEnv("OTEL_LOG_LEVEL", "info")),
	}

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"PRODUCT_LIST_CACHE_TTL", "30s", &cfg.ProductListCacheTTL},
		{"OTEL_METRICS_EXPORT_INTERVAL", "10s", &cfg.OTELMetricsExportInterval},
		{"READINESS_PROBE_TIMEOUT", "1s", &cfg.ReadinessProbeTimeout},
		{"SHUTDOWN_TIMEOUT", "20s", &cfg.ShutdownTimeout},
		{"SHUTDOWN_HTTP_DRAIN_TIMEOUT", "10s", &cfg.ShutdownHTTPDrainTimeout},
		{"SHUTDOWN_OBSERVABILITY_TIMEOUT", "8s", &cfg.ShutdownObservabilityTimeout},
	}
	for _, d := range durations {
		v, err := time.ParseDuration(getEnv(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", d.key, err)
		}
		*d.dst = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	var errs []string
	switch c.DatabaseDriver {
	case "sqlite", "postgres":
	default:
		errs = append(errs, "DATABASE_DRIVER must be one of sqlite, postgres")
	}
	if c.DatabaseURL == "" {
		errs = append(errs, "DATABASE_URL is required")
	}
	if c.ImageDirectory == "" {
		errs = append(errs, "IMAGE_DIRECTORY is required")
	}
	switch c.ImageStorageBackend {
	case "local":
	case "minio":
		if c.MinIOEndpoint == "" {
			errs = append(errs, "MINIO_ENDPOINT is required when IMAGE_STORAGE_BACKEND=minio")
		}
		if c.MinIOAccessKey == "" || c.MinIOSecretKey == "" {
			errs = append(errs, "MINIO_ACCESS_KEY and MINIO_SECRET_KEY are required when IMAGE_STORAGE_BACKEND=minio")
		}
		if c.MinIOBucket == "" {
			errs = append(errs, "MINIO_BUCKET is required when IMAGE_STORAGE_BACKEND=minio")
		}
	default:
		errs = append(errs, "IMAGE_STORAGE_BACKEND must be one of local, minio")
	}
	if c.ProductListCacheEnabled {
		switch c.ProductListCacheBackend {
		case "memory":
		case "redis":
			if c.RedisAddr == "" {
				errs = append(errs, "REDIS_ADDR is required when PRODUCT_LIST_CACHE_BACKEND=redis")
			}
		default:
			errs = append(errs, "PRODUCT_LIST_CACHE_BACKEND must be one of memory, redis")
		}
		if c.ProductListCacheTTL <= 0 {
			errs = append(errs, "PRODUCT_LIST_CACHE_TTL must be > 0")
		}
	}
	if c.APIRateLimitPerMin <= 0 {
		errs = append(errs, "API_RATE_LIMIT_PER_MIN must be > 0")
	}
	switch c.RateLimitBackend {
	case "memory":
	case "redis":
		if c.RedisAddr == "" {
			errs = append(errs, "REDIS_ADDR is required when RATE_LIMIT_BACKEND=redis")
		}
	default:
		errs = append(errs, "RATE_LIMIT_BACKEND must be one of memory, redis")
	}
	if c.MaxRequestBodyBytes <= 0 {
		errs = append(errs, "MAX_REQUEST_BODY_BYTES must be > 0")
	}
	if (c.OTELMetricsEnabled || c.OTELTracingEnabled || c.OTELLogsEnabled) && c.OTELExporterOTLPEndpoint == "" {
		errs = append(errs, "OTEL_EXPORTER_OTLP_ENDPOINT is required when OTel is enabled")
	}
	if c.OTELTraceSamplingRatio < 0 || c.OTELTraceSamplingRatio > 1 {
		errs = append(errs, "OTEL_TRACE_SAMPLING_RATIO must be between 0 and 1")
	}
	if c.OTELMetricsExportInterval <= 0 {
		errs = append(errs, "OTEL_METRICS_EXPORT_INTERVAL must be > 0")
	}
	if !isValidLogLevel(c.OTELLogLevel) {
		errs = append(errs, "OTEL_LOG_LEVEL must be one of debug, info, warn, error")
	}
	if !isLocalLikeEnv(c.Env) && c.DatabaseDriver == "sqlite" {
		errs = append(errs, "DATABASE_DRIVER=sqlite is only allowed in local environments")
	}
	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// UsesRedis reports whether any enabled component needs a Redis client.
func (c *Config) UsesRedis() bool {
	return (c.ProductListCacheEnabled && c.ProductListCacheBackend == "redis") || c.RateLimitBackend == "redis"
}

func isLocalLikeEnv(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "development", "dev", "local", "test":
		return true
	default:
		return false
	}
}

func isValidLogLevel(v string) bool {
	switch strings.ToLower(v) {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

func getEnv(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func getEnvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getEnvFloat(key string, def float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return def
	}
	return f
}

func splitCSV(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trim := strings.TrimSpace(p)
		if trim != "" {
			out = append(out, trim)
		}
	}
	return out
}
