package usecase

import (
	"context"

	"github.com/azizikri/storefront-rules/internal/domain"
)

type ProductGateway interface {
	CreateProduct(ctx context.Context, in domain.ProductInput) (domain.ProductResult, error)
	GetProduct(ctx context.Context, name string) (*domain.Product, error)
	UndoLastProduct(ctx context.Context) (*domain.Product, error)
}
