package health

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type pingFunc func(context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestProbeRunnerSkipsNilCheckers(t *testing.T) {
	runner := NewProbeRunner(time.Second, 0, NewRedisChecker(nil), NewImageDirChecker(""), NewDBChecker(nil))
	ready, results := runner.Ready(context.Background())
	if !ready || len(results) != 0 {
		t.Fatalf("expected ready with no checks, got ready=%v results=%+v", ready, results)
	}
}

func TestImageDirChecker(t *testing.T) {
	dir := t.TempDir()
	if res := NewImageDirChecker(dir).Check(context.Background()); !res.Healthy {
		t.Fatalf("expected healthy, got %+v", res)
	}
	if res := NewImageDirChecker(filepath.Join(dir, "missing")).Check(context.Background()); res.Healthy {
		t.Fatal("expected missing directory to be unhealthy")
	}
	file := filepath.Join(dir, "file")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if res := NewImageDirChecker(file).Check(context.Background()); res.Healthy || res.Name != "image_dir" {
		t.Fatalf("expected file path to be unhealthy, got %+v", res)
	}
}

func TestRedisChecker(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	if res := NewRedisChecker(client).Check(context.Background()); !res.Healthy {
		t.Fatalf("expected healthy redis, got %+v", res)
	}
	mr.Close()
	if res := NewRedisChecker(client).Check(context.Background()); res.Healthy {
		t.Fatal("expected closed redis to be unhealthy")
	}
}

func TestDBChecker(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:health_db?mode=memory&cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, _ := db.DB()
	t.Cleanup(func() { _ = sqlDB.Close() })

	if res := NewDBChecker(db).Check(context.Background()); !res.Healthy {
		t.Fatalf("expected healthy db, got %+v", res)
	}
}

func TestPingChecker(t *testing.T) {
	ok := NewPingChecker("image_store", pingFunc(func(context.Context) error { return nil }))
	if res := ok.Check(context.Background()); !res.Healthy || res.Name != "image_store" {
		t.Fatalf("expected healthy, got %+v", res)
	}
	bad := NewPingChecker("image_store", pingFunc(func(context.Context) error { return errors.New("bucket unreachable") }))
	if res := bad.Check(context.Background()); res.Healthy || res.Error != "bucket unreachable" {
		t.Fatalf("expected unhealthy, got %+v", res)
	}
}
