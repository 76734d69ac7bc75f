package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/sandeepkv93/coffee-catalog-backend/internal/config"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/health"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/observability"
)

// App holds everything cmd/api needs to serve and to shut down in stages.
type App struct {
	Config        *config.Config
	Logger        *slog.Logger
	Server        *http.Server
	Observability *observability.Runtime
	DB            *gorm.DB
	Redis         redis.UniversalClient
	Readiness     *health.ProbeRunner

	ShutdownTimeout              time.Duration
	ShutdownHTTPDrainTimeout     time.Duration
	ShutdownObservabilityTimeout time.Duration
}

func New(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	runtime *observability.Runtime,
	db *gorm.DB,
	redisClient redis.UniversalClient,
	readiness *health.ProbeRunner,
) *App {
	return &App{
		Config:                       cfg,
		Logger:                       logger,
		Server:                       server,
		Observability:                runtime,
		DB:                           db,
		Redis:                        redisClient,
		Readiness:                    readiness,
		ShutdownTimeout:              cfg.ShutdownTimeout,
		ShutdownHTTPDrainTimeout:     cfg.ShutdownHTTPDrainTimeout,
		ShutdownObservabilityTimeout: cfg.ShutdownObservabilityTimeout,
	}
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}

// Shutdown drains HTTP first, then flushes telemetry, then closes Redis and
// the database. Every stage runs even if an earlier one fails.
func (a *App) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, orDefault(a.ShutdownTimeout, 20*time.Second))
	defer cancel()

	var errs []error
	if a.Server != nil {
		httpCtx, httpCancel := context.WithTimeout(ctx, orDefault(a.ShutdownHTTPDrainTimeout, 10*time.Second))
		if err := a.Server.Shutdown(httpCtx); err != nil {
			errs = append(errs, fmt.Errorf("http drain: %w", err))
		}
		httpCancel()
	}
	if a.Observability != nil {
		obsCtx, obsCancel := context.WithTimeout(ctx, orDefault(a.ShutdownObservabilityTimeout, 8*time.Second))
		if err := a.Observability.Shutdown(obsCtx); err != nil {
			errs = append(errs, fmt.Errorf("observability: %w", err))
		}
		obsCancel()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				errs = append(errs, fmt.Errorf("database: %w", err))
			}
		}
	}
	return errors.Join(errs...)
}
