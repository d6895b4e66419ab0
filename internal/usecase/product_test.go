package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/azizikri/storefront-rules/internal/domain"
	"github.com/azizikri/storefront-rules/internal/repository"
	"github.com/azizikri/storefront-rules/internal/stack"
	"github.com/google/uuid"
)

type mockStore struct {
	insertProductFn    func(ctx context.Context, product domain.Product) (domain.Product, error)
	getProductByNameFn func(ctx context.Context, name string) (domain.Product, error)
	deleteProductFn    func(ctx context.Context, id uuid.UUID) error
	execTxFn           func(ctx context.Context, fn func(repository.Querier) error) error
	listProductsFn     func(ctx context.Context) ([]domain.Product, error)
}

func (m *mockStore) ListProducts(ctx context.Context) ([]domain.Product, error) {
	if m.listProductsFn != nil {
		return m.listProductsFn(ctx)
	}
	return nil, nil
}

func (m *mockStore) InsertProduct(ctx context.Context, product domain.Product) (domain.Product, error) {
	if m.insertProductFn != nil {
		return m.insertProductFn(ctx, product)
	}
	return product, nil
}

func (m *mockStore) GetProductByName(ctx context.Context, name string) (domain.Product, error) {
	if m.getProductByNameFn != nil {
		return m.getProductByNameFn(ctx, name)
	}
	return domain.Product{}, domain.ErrNotFound
}

func (m *mockStore) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if m.deleteProductFn != nil {
		return m.deleteProductFn(ctx, id)
	}
	return nil
}

func (m *mockStore) ExecTx(ctx context.Context, fn func(repository.Querier) error) error {
	if m.execTxFn != nil {
		return m.execTxFn(ctx, fn)
	}
	return fn(m)
}

// memoryStore keeps inserted products by name so undo can find them.
func memoryStore() *mockStore {
	products := map[string]domain.Product{}
	return &mockStore{
		insertProductFn: func(ctx context.Context, p domain.Product) (domain.Product, error) {
			if _, ok := products[p.Name]; ok {
				return domain.Product{}, domain.ErrDuplicateProduct
			}
			products[p.Name] = p
			return p, nil
		},
		getProductByNameFn: func(ctx context.Context, name string) (domain.Product, error) {
			p, ok := products[name]
			if !ok {
				return domain.Product{}, domain.ErrNotFound
			}
			return p, nil
		},
		deleteProductFn: func(ctx context.Context, id uuid.UUID) error {
			for name, p := range products {
				if p.ID == id {
					delete(products, name)
					return nil
				}
			}
			return domain.ErrNotFound
		},
	}
}

func TestCreateProduct_Success(t *testing.T) {
	var inserted domain.Product
	store := &mockStore{
		insertProductFn: func(ctx context.Context, p domain.Product) (domain.Product, error) {
			inserted = p
			return p, nil
		},
	}

	svc := NewProductService(store)
	result, err := svc.CreateProduct(context.Background(), domain.ProductInput{Name: "Apple", Price: 200})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !result.Success || result.Message != "Product was successfully published" {
		t.Fatalf("unexpected result: %+v", result)
	}
	if inserted.Name != "Apple" || inserted.Price != 200 || inserted.ID == uuid.Nil {
		t.Fatalf("unexpected inserted product: %+v", inserted)
	}
}

func TestCreateProduct_RuleFailureSkipsStore(t *testing.T) {
	store := &mockStore{
		insertProductFn: func(ctx context.Context, p domain.Product) (domain.Product, error) {
			t.Fatalf("store must not be called for invalid input")
			return domain.Product{}, nil
		},
	}

	svc := NewProductService(store)
	result, err := svc.CreateProduct(context.Background(), domain.ProductInput{Name: "Apple", Price: -2})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Success || result.Error == nil || result.Error.Code != domain.ProductCodeInvalidPrice {
		t.Fatalf("expected invalid_price result, got %+v", result)
	}
}

func TestCreateProduct_Duplicate(t *testing.T) {
	store := &mockStore{
		insertProductFn: func(ctx context.Context, p domain.Product) (domain.Product, error) {
			return domain.Product{}, domain.ErrDuplicateProduct
		},
	}

	svc := NewProductService(store)
	_, err := svc.CreateProduct(context.Background(), domain.ProductInput{Name: "Apple", Price: 200})
	if !errors.Is(err, domain.ErrDuplicateProduct) {
		t.Fatalf("expected ErrDuplicateProduct, got %v", err)
	}

	if _, err := svc.UndoLastProduct(context.Background()); !errors.Is(err, stack.ErrEmpty) {
		t.Fatalf("expected failed publish to stay out of history, got %v", err)
	}
}

func TestGetProduct(t *testing.T) {
	svc := NewProductService(memoryStore())
	if _, err := svc.CreateProduct(context.Background(), domain.ProductInput{Name: "Apple", Price: 200}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	p, err := svc.GetProduct(context.Background(), "Apple")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if p.Name != "Apple" {
		t.Fatalf("expected Apple, got %s", p.Name)
	}

	if _, err := svc.GetProduct(context.Background(), "Pear"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUndoLastProduct_EmptyHistory(t *testing.T) {
	svc := NewProductService(memoryStore())
	_, err := svc.UndoLastProduct(context.Background())
	if !errors.Is(err, stack.ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestUndoLastProduct_LIFO(t *testing.T) {
	store := memoryStore()
	svc := NewProductService(store)
	ctx := context.Background()

	for _, name := range []string{"Apple", "Orange"} {
		if _, err := svc.CreateProduct(ctx, domain.ProductInput{Name: name, Price: 10}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	for _, want := range []string{"Orange", "Apple"} {
		p, err := svc.UndoLastProduct(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if p.Name != want {
			t.Fatalf("expected %s, got %s", want, p.Name)
		}
		if _, err := svc.GetProduct(ctx, want); !errors.Is(err, domain.ErrNotFound) {
			t.Fatalf("expected %s to be deleted, got %v", want, err)
		}
	}

	if _, err := svc.UndoLastProduct(ctx); !errors.Is(err, stack.ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestUndoLastProduct_RowAlreadyGone(t *testing.T) {
	store := memoryStore()
	svc := NewProductService(store)
	ctx := context.Background()

	if _, err := svc.CreateProduct(ctx, domain.ProductInput{Name: "Apple", Price: 10}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	p, _ := svc.GetProduct(ctx, "Apple")
	if err := store.DeleteProduct(ctx, p.ID); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if _, err := svc.UndoLastProduct(ctx); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.UndoLastProduct(ctx); !errors.Is(err, stack.ErrEmpty) {
		t.Fatalf("expected stale entry to be dropped, got %v", err)
	}
}

func TestUndoLastProduct_StoreFailureKeepsHistory(t *testing.T) {
	store := memoryStore()
	svc := NewProductService(store)
	ctx := context.Background()

	if _, err := svc.CreateProduct(ctx, domain.ProductInput{Name: "Apple", Price: 10}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	boom := errors.New("connection reset")
	store.execTxFn = func(ctx context.Context, fn func(repository.Querier) error) error {
		return boom
	}
	if _, err := svc.UndoLastProduct(ctx); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}

	store.execTxFn = nil
	p, err := svc.UndoLastProduct(ctx)
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if p.Name != "Apple" {
		t.Fatalf("expected Apple, got %s", p.Name)
	}
}

func TestCreateProduct_ConcurrentKeepsInsertOrder(t *testing.T) {
	var (
		orderMu  sync.Mutex
		inserted []string
	)
	store := memoryStore()
	insert := store.insertProductFn
	store.insertProductFn = func(ctx context.Context, p domain.Product) (domain.Product, error) {
		orderMu.Lock()
		defer orderMu.Unlock()
		inserted = append(inserted, p.Name)
		return insert(ctx, p)
	}
	svc := NewProductService(store)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := svc.CreateProduct(ctx, domain.ProductInput{Name: fmt.Sprintf("item-%02d", i), Price: 1}); err != nil {
				t.Errorf("create item-%02d: %v", i, err)
			}
		}(i)
	}
	wg.Wait()

	for i := len(inserted) - 1; i >= 0; i-- {
		p, err := svc.UndoLastProduct(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if p.Name != inserted[i] {
			t.Fatalf("expected %s, got %s", inserted[i], p.Name)
		}
	}
}

func TestLoadHistory_UndoesNewestStoredProduct(t *testing.T) {
	store := memoryStore()
	svc := NewProductService(store)
	ctx := context.Background()

	var rows []domain.Product
	for _, name := range []string{"Apple", "Orange"} {
		p, err := store.InsertProduct(ctx, domain.Product{ID: uuid.New(), Name: name, Price: 10})
		if err != nil {
			t.Fatalf("insert %s: %v", name, err)
		}
		rows = append(rows, p)
	}
	store.listProductsFn = func(ctx context.Context) ([]domain.Product, error) {
		return rows, nil
	}

	if _, err := svc.CreateProduct(ctx, domain.ProductInput{Name: "Stale", Price: 1}); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := svc.LoadHistory(ctx); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	for _, want := range []string{"Orange", "Apple"} {
		p, err := svc.UndoLastProduct(ctx)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if p.Name != want {
			t.Fatalf("expected %s, got %s", want, p.Name)
		}
	}
	if _, err := svc.UndoLastProduct(ctx); !errors.Is(err, stack.ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}

func TestLoadHistory_StoreError(t *testing.T) {
	boom := errors.New("connection refused")
	svc := NewProductService(&mockStore{
		listProductsFn: func(ctx context.Context) ([]domain.Product, error) {
			return nil, boom
		},
	})
	if err := svc.LoadHistory(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}
