package service

import (
	"context"

	"github.com/sandeepkv93/coffee-catalog-backend/internal/domain"
)

//go:generate mockgen -destination=gomock/mocks.go -package=servicegomock . ProductService,ImageService,ImageStore

type ProductService interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	// GetProductByID reports found=false with a nil error when no row exists.
	GetProductByID(ctx context.Context, id uint) (domain.Product, bool, error)
	Save(ctx context.Context, product *domain.Product) error
}

type ImageService interface {
	// StoreProductImage decodes a "<prefix>,<base64>" payload, writes it to
	// the image store and returns the generated filename.
	StoreProductImage(ctx context.Context, payload string) (string, error)
}

type ImageStore interface {
	Put(ctx context.Context, name string, data []byte) error
	Backend() string
}
