package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sandeepkv93/coffee-catalog-backend/internal/domain"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/imagedir"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/observability"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/repository"
)

type ImageSeedReport struct {
	Scanned  int    `json:"scanned"`
	Created  int    `json:"created"`
	FirstID  uint   `json:"first_id,omitempty"`
	LastID   uint   `json:"last_id,omitempty"`
	ImageDir string `json:"image_dir"`
}

// PlanProductsFromImages builds one synthetic product per image file in dir,
// in scan order, without persisting anything.
func PlanProductsFromImages(logger *slog.Logger, dir string, today time.Time) []domain.Product {
	names := imagedir.ListImageFileNames(logger, dir)
	products := make([]domain.Product, 0, len(names))
	for i, name := range names {
		products = append(products, domain.Product{
			Name:        fmt.Sprintf("상품%d", i),
			Category:    domain.CategoryBread,
			Image:       name,
			Price:       float64(10 * (i + 1)),
			Stock:       100 * (i + 1),
			Description: fmt.Sprintf("상품 설명 %d", i),
			InputDate:   domain.DateOf(today),
		})
	}
	return products
}

// SeedProductsFromImages saves the planned products one by one. It stops at
// the first store error; rows saved before it stay.
func SeedProductsFromImages(ctx context.Context, repo repository.ProductRepository, logger *slog.Logger, dir string, today time.Time) (*ImageSeedReport, error) {
	start := time.Now()
	defer func() {
		observability.RecordDatabaseStartupDuration(ctx, "seed", time.Since(start))
	}()

	products := PlanProductsFromImages(logger, dir, today)
	report := &ImageSeedReport{Scanned: len(products), ImageDir: dir}
	for i := range products {
		if err := repo.Save(ctx, &products[i]); err != nil {
			observability.RecordDatabaseStartupEvent(ctx, "seed", "error")
			return report, fmt.Errorf("seed product for image %s: %w", products[i].Image, err)
		}
		if report.FirstID == 0 {
			report.FirstID = products[i].ID
		}
		report.LastID = products[i].ID
		report.Created++
	}
	observability.RecordDatabaseStartupEvent(ctx, "seed", "success")
	return report, nil
}
