package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sandeepkv93/coffee-catalog-backend/internal/domain"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/observability"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/repository"
)

type ProductServiceImpl struct {
	repo     repository.ProductRepository
	cache    ProductListCacheStore
	cacheTTL time.Duration
	group    singleflight.Group
	// generation is bumped by every Save; a fetch that started under an older
	// generation must not repopulate the cache.
	generation atomic.Uint64
}

// NewProductService wires the store and an optional list cache. A nil cache
// or a non-positive ttl disables caching.
func NewProductService(repo repository.ProductRepository, cache ProductListCacheStore, cacheTTL time.Duration) *ProductServiceImpl {
	if cache == nil || cacheTTL <= 0 {
		cache = NewNoopProductListCacheStore()
	}
	return &ProductServiceImpl{repo: repo, cache: cache, cacheTTL: cacheTTL}
}

func (s *ProductServiceImpl) ListProducts(ctx context.Context) ([]domain.Product, error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordProductOperation(ctx, "list", outcome, time.Since(start)) }()

	backend := s.cache.Backend()
	if backend == "noop" {
		products, err := s.repo.ListAllOrderedByIDDesc(ctx)
		if err != nil {
			outcome = "error"
			return nil, err
		}
		return products, nil
	}

	if raw, ok, err := s.cache.Get(ctx, productListCacheKey); err != nil {
		observability.RecordProductListCacheEvent(ctx, backend, "error")
		slog.WarnContext(ctx, "product list cache read failed", "backend", backend, "error", err)
	} else if ok {
		var products []domain.Product
		if err := json.Unmarshal(raw, &products); err == nil {
			observability.RecordProductListCacheEvent(ctx, backend, "hit")
			outcome = "cache_hit"
			return products, nil
		}
		observability.RecordProductListCacheEvent(ctx, backend, "decode_error")
	} else {
		observability.RecordProductListCacheEvent(ctx, backend, "miss")
	}

	v, err, _ := s.group.Do(productListCacheKey, func() (any, error) {
		// Callers share this fetch, so one disconnecting must not fail the rest.
		fetchCtx := context.WithoutCancel(ctx)
		gen := s.generation.Load()
		products, err := s.repo.ListAllOrderedByIDDesc(fetchCtx)
		if err != nil {
			return nil, err
		}
		if s.generation.Load() != gen {
			observability.RecordProductListCacheEvent(fetchCtx, backend, "stale_skip")
			return products, nil
		}
		if raw, err := json.Marshal(products); err == nil {
			if err := s.cache.Set(fetchCtx, productListCacheKey, raw, s.cacheTTL); err != nil {
				observability.RecordProductListCacheEvent(ctx, backend, "error")
				slog.WarnContext(ctx, "product list cache write failed", "backend", backend, "error", err)
			}
		}
		return products, nil
	})
	if err != nil {
		outcome = "error"
		return nil, err
	}
	shared := v.([]domain.Product)
	return append(make([]domain.Product, 0, len(shared)), shared...), nil
}

func (s *ProductServiceImpl) GetProductByID(ctx context.Context, id uint) (domain.Product, bool, error) {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordProductOperation(ctx, "get", outcome, time.Since(start)) }()

	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			outcome = "not_found"
			return domain.Product{}, false, nil
		}
		outcome = "error"
		return domain.Product{}, false, err
	}
	return *product, true, nil
}

func (s *ProductServiceImpl) Save(ctx context.Context, product *domain.Product) error {
	start := time.Now()
	outcome := "success"
	defer func() { observability.RecordProductOperation(ctx, "save", outcome, time.Since(start)) }()

	if err := s.repo.Save(ctx, product); err != nil {
		outcome = "error"
		return err
	}

	backend := s.cache.Backend()
	if backend != "noop" {
		s.generation.Add(1)
		s.group.Forget(productListCacheKey)
		if err := s.cache.Invalidate(ctx); err != nil {
			observability.RecordProductListCacheEvent(ctx, backend, "error")
			slog.WarnContext(ctx, "product list cache invalidation failed", "backend", backend, "error", err)
		} else {
			observability.RecordProductListCacheEvent(ctx, backend, "invalidate")
		}
	}
	return nil
}
