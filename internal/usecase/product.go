package usecase

import (
	"context"
	"errors"
	"sync"

	"github.com/azizikri/storefront-rules/internal/domain"
	"github.com/azizikri/storefront-rules/internal/repository"
	"github.com/azizikri/storefront-rules/internal/stack"
	"github.com/google/uuid"
)

// ProductService publishes products that pass domain.CreateProduct and
// remembers them so the most recent publication can be undone.
type ProductService struct {
	store repository.Store

	mu      sync.Mutex
	history *stack.Stack[domain.Product]
}

func NewProductService(store repository.Store) *ProductService {
	return &ProductService{
		store:   store,
		history: stack.New[domain.Product](),
	}
}

// CreateProduct returns a nil error for inputs rejected by the rules; the
// rejection is carried in the result.
func (s *ProductService) CreateProduct(ctx context.Context, in domain.ProductInput) (domain.ProductResult, error) {
	result := domain.CreateProduct(in)
	if !result.Success {
		return result, nil
	}

	// Held across the insert so history order matches insert order.
	s.mu.Lock()
	defer s.mu.Unlock()

	product, err := s.store.InsertProduct(ctx, domain.Product{
		ID:    uuid.New(),
		Name:  in.Name,
		Price: in.Price,
	})
	if err != nil {
		return domain.ProductResult{}, err
	}
	s.history.Push(product)

	return result, nil
}

// LoadHistory replaces the undo history with the stored products, oldest
// first, so the newest row is undone first.
func (s *ProductService) LoadHistory(ctx context.Context) error {
	products, err := s.store.ListProducts(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.history.Clear()
	for _, p := range products {
		s.history.Push(p)
	}
	return nil
}

func (s *ProductService) GetProduct(ctx context.Context, name string) (*domain.Product, error) {
	product, err := s.store.GetProductByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// UndoLastProduct deletes the most recently published product. It returns
// stack.ErrEmpty when nothing is left to undo. A history entry whose row is
// gone is dropped and reported as domain.ErrNotFound.
func (s *ProductService) UndoLastProduct(ctx context.Context) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	last, err := s.history.Peek()
	if err != nil {
		return nil, err
	}

	err = s.store.ExecTx(ctx, func(q repository.Querier) error {
		current, err := q.GetProductByName(ctx, last.Name)
		if err != nil {
			return err
		}
		if current.ID != last.ID {
			return domain.ErrNotFound
		}
		return q.DeleteProduct(ctx, current.ID)
	})
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	_, _ = s.history.Pop()
	if err != nil {
		return nil, err
	}
	return &last, nil
}
