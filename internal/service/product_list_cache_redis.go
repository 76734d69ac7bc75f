package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisProductListCacheStore struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisProductListCacheStore(client redis.UniversalClient, prefix string) *RedisProductListCacheStore {
	if prefix == "" {
		prefix = "catalog"
	}
	return &RedisProductListCacheStore{
		client: client,
		prefix: prefix + ":product_list_cache",
	}
}

func (s *RedisProductListCacheStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.client == nil {
		return nil, false, nil
	}
	value, err := s.client.Get(ctx, s.dataKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return value, true, nil
}

func (s *RedisProductListCacheStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.client == nil || ttl <= 0 {
		return nil
	}
	dataKey := s.dataKey(key)
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, dataKey, value, ttl)
	pipe.SAdd(ctx, s.indexKey(), dataKey)
	pipe.Expire(ctx, s.indexKey(), ttl+time.Minute)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisProductListCacheStore) Invalidate(ctx context.Context) error {
	if s.client == nil {
		return nil
	}
	keys, err := s.client.SMembers(ctx, s.indexKey()).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	pipe := s.client.TxPipeline()
	if len(keys) > 0 {
		pipe.Del(ctx, keys...)
	}
	pipe.Del(ctx, s.indexKey())
	_, err = pipe.Exec(ctx)
	return err
}

func (s *RedisProductListCacheStore) Backend() string { return "redis" }

func (s *RedisProductListCacheStore) dataKey(key string) string {
	return fmt.Sprintf("%s:data:%s", s.prefix, key)
}

func (s *RedisProductListCacheStore) indexKey() string {
	return s.prefix + ":index"
}
