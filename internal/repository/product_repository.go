package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sandeepkv93/coffee-catalog-backend/internal/domain"
	"github.com/sandeepkv93/coffee-catalog-backend/internal/observability"
)

var ErrProductNotFound = errors.New("product not found")

type ProductRepository interface {
	Save(ctx context.Context, product *domain.Product) error
	FindByID(ctx context.Context, id uint) (*domain.Product, error)
	ListAllOrderedByIDDesc(ctx context.Context) ([]domain.Product, error)
}

type GormProductRepository struct{ db *gorm.DB }

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &GormProductRepository{db: db}
}

// Save inserts when product.ID is zero and upserts otherwise. The assigned id
// is written back to product.
func (r *GormProductRepository) Save(ctx context.Context, product *domain.Product) error {
	if err := r.db.WithContext(ctx).Save(product).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "product", "save", "error")
		return err
	}
	observability.RecordRepositoryOperation(ctx, "product", "save", "success")
	return nil
}

func (r *GormProductRepository) FindByID(ctx context.Context, id uint) (*domain.Product, error) {
	var product domain.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			observability.RecordRepositoryOperation(ctx, "product", "find_by_id", "not_found")
			return nil, ErrProductNotFound
		}
		observability.RecordRepositoryOperation(ctx, "product", "find_by_id", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "product", "find_by_id", "success")
	return &product, nil
}

func (r *GormProductRepository) ListAllOrderedByIDDesc(ctx context.Context) ([]domain.Product, error) {
	products := make([]domain.Product, 0)
	if err := r.db.WithContext(ctx).Order("id desc").Find(&products).Error; err != nil {
		observability.RecordRepositoryOperation(ctx, "product", "list_all", "error")
		return nil, err
	}
	observability.RecordRepositoryOperation(ctx, "product", "list_all", "success")
	return products, nil
}
