package kafka

import (
	"context"

	"github.com/azizikri/storefront-rules/internal/domain"
	"github.com/azizikri/storefront-rules/internal/usecase"
)

// DirectGateway calls the service in-process when Kafka is disabled.
type DirectGateway struct {
	service *usecase.ProductService
}

func NewDirectGateway(service *usecase.ProductService) usecase.ProductGateway {
	return &DirectGateway{service: service}
}

func (g *DirectGateway) CreateProduct(ctx context.Context, in domain.ProductInput) (domain.ProductResult, error) {
	return g.service.CreateProduct(ctx, in)
}

func (g *DirectGateway) GetProduct(ctx context.Context, name string) (*domain.Product, error) {
	return g.service.GetProduct(ctx, name)
}

func (g *DirectGateway) UndoLastProduct(ctx context.Context) (*domain.Product, error) {
	return g.service.UndoLastProduct(ctx)
}
