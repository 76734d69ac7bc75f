package database

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sandeepkv93/coffee-catalog-backend/internal/domain"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/repository"
)

func newDatabaseForTest(t *testing.T, name string) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+name+"?mode=memory&cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestSeedProductsFromImagesCreatesOneRowPerImage(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.jpg", "b.png", "c.jpeg", "readme.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	db := newDatabaseForTest(t, "seed_images")
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	repo := repository.NewProductRepository(db)
	today := time.Date(2024, 7, 1, 9, 0, 0, 0, time.UTC)

	report, err := SeedProductsFromImages(context.Background(), repo, quietLogger(), dir, today)
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if report.Scanned != 3 || report.Created != 3 {
		t.Fatalf("unexpected report %+v", report)
	}

	all, err := repo.ListAllOrderedByIDDesc(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(all))
	}
	images := make([]string, 0, len(all))
	for _, p := range all {
		images = append(images, p.Image)
		if p.Category != domain.CategoryBread || p.InputDate.String() != "2024-07-01" {
			t.Fatalf("unexpected seeded product %+v", p)
		}
	}
	sort.Strings(images)
	if images[0] != "a.jpg" || images[1] != "b.png" || images[2] != "c.jpeg" {
		t.Fatalf("unexpected images %v", images)
	}
}

func TestPlanProductsFromImagesSyntheticValues(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "only.jpg"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	planned := PlanProductsFromImages(quietLogger(), dir, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	if len(planned) != 1 {
		t.Fatalf("expected one planned product, got %d", len(planned))
	}
	p := planned[0]
	if p.Name != "상품0" || p.Description != "상품 설명 0" || p.Price != 10 || p.Stock != 100 || p.Image != "only.jpg" {
		t.Fatalf("unexpected synthetic values %+v", p)
	}
	if p.ID != 0 {
		t.Fatalf("planned products must not carry ids, got %d", p.ID)
	}
}

func TestSeedProductsFromMissingDirectoryCreatesNothing(t *testing.T) {
	db := newDatabaseForTest(t, "seed_missing")
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	report, err := SeedProductsFromImages(context.Background(), repository.NewProductRepository(db), quietLogger(), filepath.Join(t.TempDir(), "nope"), time.Now())
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if report.Created != 0 {
		t.Fatalf("expected nothing created, got %+v", report)
	}
}

func TestPlanReportsMissingTableThenUpToDate(t *testing.T) {
	db := newDatabaseForTest(t, "migrate_plan")
	steps, err := Plan(db)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(steps) != 1 || steps[0] != "would create table products" {
		t.Fatalf("unexpected plan before migrate: %v", steps)
	}
	if err := Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	steps, err = Plan(db)
	if err != nil {
		t.Fatalf("plan: %v", err)
	}
	if len(steps) != 1 || steps[0] != "schema up to date" {
		t.Fatalf("unexpected plan after migrate: %v", steps)
	}
}
