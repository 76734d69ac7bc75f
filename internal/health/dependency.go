package health

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type DBChecker struct {
	db *gorm.DB
}

func NewDBChecker(db *gorm.DB) Checker {
	if db == nil {
		return nil
	}
	return &DBChecker{db: db}
}

func (c *DBChecker) Check(ctx context.Context) CheckResult {
	res := CheckResult{Name: "db", Healthy: true}
	sqlDB, err := c.db.DB()
	if err != nil {
		return unhealthy(res, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return unhealthy(res, err)
	}
	return res
}

type RedisChecker struct {
	client redis.UniversalClient
}

func NewRedisChecker(client redis.UniversalClient) Checker {
	if client == nil {
		return nil
	}
	return &RedisChecker{client: client}
}

func (c *RedisChecker) Check(ctx context.Context) CheckResult {
	res := CheckResult{Name: "redis", Healthy: true}
	if err := c.client.Ping(ctx).Err(); err != nil {
		return unhealthy(res, err)
	}
	return res
}

// ImageDirChecker fails when the configured image directory is missing,
// since inserts would then fail on write.
type ImageDirChecker struct {
	dir string
}

func NewImageDirChecker(dir string) Checker {
	if dir == "" {
		return nil
	}
	return &ImageDirChecker{dir: dir}
}

func (c *ImageDirChecker) Check(context.Context) CheckResult {
	res := CheckResult{Name: "image_dir", Healthy: true}
	info, err := os.Stat(c.dir)
	if err != nil {
		return unhealthy(res, err)
	}
	if !info.IsDir() {
		return unhealthy(res, fmt.Errorf("%s is not a directory", c.dir))
	}
	return res
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// PingChecker adapts any dependency exposing Ping, such as the object store.
type PingChecker struct {
	name   string
	target Pinger
}

func NewPingChecker(name string, target Pinger) Checker {
	if target == nil {
		return nil
	}
	return &PingChecker{name: name, target: target}
}

func (c *PingChecker) Check(ctx context.Context) CheckResult {
	res := CheckResult{Name: c.name, Healthy: true}
	if err := c.target.Ping(ctx); err != nil {
		return unhealthy(res, err)
	}
	return res
}

func unhealthy(res CheckResult, err error) CheckResult {
	if err == nil {
		err = errors.New("unknown failure")
	}
	res.Healthy = false
	res.Error = err.Error()
	return res
}
