package service

import (
	"context"
	"sync"
	"time"
)

const productListCacheKey = "products:all"

type ProductListCacheStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Invalidate(ctx context.Context) error
	Backend() string
}

type NoopProductListCacheStore struct{}

func NewNoopProductListCacheStore() *NoopProductListCacheStore {
	return &NoopProductListCacheStore{}
}

func (s *NoopProductListCacheStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, nil
}

func (s *NoopProductListCacheStore) Set(context.Context, string, []byte, time.Duration) error {
	return nil
}

func (s *NoopProductListCacheStore) Invalidate(context.Context) error { return nil }

func (s *NoopProductListCacheStore) Backend() string { return "noop" }

type memoryCacheEntry struct {
	payload   []byte
	expiresAt time.Time
}

type InMemoryProductListCacheStore struct {
	mu    sync.RWMutex
	store map[string]memoryCacheEntry
	now   func() time.Time
}

func NewInMemoryProductListCacheStore() *InMemoryProductListCacheStore {
	return &InMemoryProductListCacheStore{
		store: make(map[string]memoryCacheEntry),
		now:   time.Now,
	}
}

func (s *InMemoryProductListCacheStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	now := s.now().UTC()
	s.mu.RLock()
	entry, ok := s.store[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if now.After(entry.expiresAt) {
		s.mu.Lock()
		if cur, ok := s.store[key]; ok && cur.expiresAt.Equal(entry.expiresAt) {
			delete(s.store, key)
		}
		s.mu.Unlock()
		return nil, false, nil
	}
	return append([]byte(nil), entry.payload...), true, nil
}

func (s *InMemoryProductListCacheStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.store[key] = memoryCacheEntry{
		payload:   append([]byte(nil), value...),
		expiresAt: s.now().UTC().Add(ttl),
	}
	return nil
}

func (s *InMemoryProductListCacheStore) Invalidate(context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.store)
	return nil
}

func (s *InMemoryProductListCacheStore) Backend() string { return "memory" }
