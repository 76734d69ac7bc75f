package di

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/wire"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/sandeepkv93/coffee-catalog-backend/internal/app"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/config"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/database"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/health"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/http/handler"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/http/middleware"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/http/router"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/observability"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/repository"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/service"
)

var ConfigSet = wire.NewSet(config.Load)

var ObservabilitySet = wire.NewSet(
	provideObservabilityRuntime,
	provideAppLogger,
)

var RuntimeInfraSet = wire.NewSet(
	provideRuntimeDB,
	provideRedisClient,
	provideImageStore,
	provideReadinessProbeRunner,
)

var RepositorySet = wire.NewSet(
	repository.NewProductRepository,
)

var ServiceSet = wire.NewSet(
	provideProductListCacheStore,
	provideProductService,
	service.NewImageService,
	wire.Bind(new(service.ProductService), new(*service.ProductServiceImpl)),
	wire.Bind(new(service.ImageService), new(*service.ImageServiceImpl)),
)

var HTTPSet = wire.NewSet(
	handler.NewProductHandler,
	provideImageHandler,
	provideAPIRateLimiter,
	provideRouterDependencies,
	router.NewRouter,
	provideHTTPServer,
)

var AppSet = wire.NewSet(provideApp)

func provideObservabilityRuntime(cfg *config.Config) (*observability.Runtime, error) {
	bootstrapLogger := observability.NewBootstrapLogger(cfg)
	return observability.InitRuntime(context.Background(), cfg, bootstrapLogger)
}

// provideAppLogger also installs the logger as the slog default; handlers and
// services log through slog's package functions.
func provideAppLogger(cfg *config.Config, runtime *observability.Runtime) *slog.Logger {
	logger := observability.InitLogger(cfg, runtime.LoggerProvider)
	slog.SetDefault(logger)
	return logger
}

func provideRuntimeDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := database.Open(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func provideRedisClient(cfg *config.Config, logger *slog.Logger) redis.UniversalClient {
	if !cfg.UsesRedis() {
		return nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	observability.InstrumentRedisClient(client, logger)
	return client
}

func provideImageStore(cfg *config.Config) (service.ImageStore, error) {
	if cfg.ImageStorageBackend == "minio" {
		return service.NewMinIOImageStore(cfg.MinIOEndpoint, cfg.MinIOAccessKey, cfg.MinIOSecretKey, cfg.MinIOBucket, cfg.MinIOUseSSL)
	}
	return service.NewLocalImageStore(cfg.ImageDirectory), nil
}

func provideProductListCacheStore(cfg *config.Config, redisClient redis.UniversalClient) service.ProductListCacheStore {
	if !cfg.ProductListCacheEnabled {
		return service.NewNoopProductListCacheStore()
	}
	if cfg.ProductListCacheBackend == "redis" && redisClient != nil {
		return service.NewRedisProductListCacheStore(redisClient, cfg.RedisKeyPrefix)
	}
	return service.NewInMemoryProductListCacheStore()
}

func provideProductService(cfg *config.Config, repo repository.ProductRepository, cache service.ProductListCacheStore) *service.ProductServiceImpl {
	return service.NewProductService(repo, cache, cfg.ProductListCacheTTL)
}

// provideImageHandler returns nil for object storage; images then live in
// the bucket and are not served by this process.
func provideImageHandler(cfg *config.Config) *handler.ImageHandler {
	if cfg.ImageStorageBackend != "local" {
		return nil
	}
	return handler.NewImageHandler(cfg.ImageDirectory)
}

func provideAPIRateLimiter(cfg *config.Config, redisClient redis.UniversalClient) router.APIRateLimiterFunc {
	if cfg.RateLimitBackend == "redis" && redisClient != nil {
		redisLimiter := middleware.NewRedisFixedWindowLimiter(redisClient, cfg.RedisKeyPrefix+":rl:api")
		return middleware.NewDistributedRateLimiter(
			redisLimiter,
			cfg.APIRateLimitPerMin,
			time.Minute,
			middleware.FailOpen,
			"api",
		).Middleware()
	}
	return middleware.NewRateLimiter(cfg.APIRateLimitPerMin, time.Minute).Middleware()
}

func provideRouterDependencies(
	productHandler *handler.ProductHandler,
	imageHandler *handler.ImageHandler,
	apiRateLimiter router.APIRateLimiterFunc,
	readiness *health.ProbeRunner,
	cfg *config.Config,
) router.Dependencies {
	return router.Dependencies{
		ProductHandler:  productHandler,
		ImageHandler:    imageHandler,
		CORSOrigins:     cfg.CORSAllowedOrigins,
		APIRateLimitRPM: cfg.APIRateLimitPerMin,
		APIRateLimiter:  apiRateLimiter,
		Readiness:       readiness,
		MaxBodyBytes:    cfg.MaxRequestBodyBytes,
		EnableOTelHTTP:  cfg.OTELMetricsEnabled || cfg.OTELTracingEnabled,
	}
}

func provideHTTPServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           h,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

func provideReadinessProbeRunner(cfg *config.Config, db *gorm.DB, redisClient redis.UniversalClient, images service.ImageStore) *health.ProbeRunner {
	checkers := []health.Checker{health.NewDBChecker(db), health.NewRedisChecker(redisClient)}
	switch store := images.(type) {
	case *service.LocalImageStore:
		checkers = append(checkers, health.NewImageDirChecker(store.Dir()))
	case health.Pinger:
		checkers = append(checkers, health.NewPingChecker("image_store", store))
	}
	return health.NewProbeRunner(cfg.ReadinessProbeTimeout, 0, checkers...)
}

func provideApp(
	cfg *config.Config,
	logger *slog.Logger,
	server *http.Server,
	runtime *observability.Runtime,
	db *gorm.DB,
	redisClient redis.UniversalClient,
	readiness *health.ProbeRunner,
) *app.App {
	return app.New(cfg, logger, server, runtime, db, redisClient, readiness)
}
