package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/azizikri/storefront-rules/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

const (
	insertProductSQL    = `INSERT INTO products (id, name, price) VALUES ($1, $2, $3) RETURNING created_at`
	getProductByNameSQL = `SELECT id, name, price, created_at FROM products WHERE name = $1`
	deleteProductSQL    = `DELETE FROM products WHERE id = $1`
	listProductsSQL     = `SELECT id, name, price, created_at FROM products ORDER BY created_at, id`
)

type Store interface {
	ExecTx(ctx context.Context, fn func(Querier) error) error
	InsertProduct(ctx context.Context, product domain.Product) (domain.Product, error)
	GetProductByName(ctx context.Context, name string) (domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

type Querier interface {
	GetProductByName(ctx context.Context, name string) (domain.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
}

type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type queries struct {
	db dbtx
}

type store struct {
	db *sql.DB
	*queries
}

func New(db *sql.DB) Store {
	return &store{
		db:      db,
		queries: &queries{db: db},
	}
}

func (s *store) ExecTx(ctx context.Context, fn func(Querier) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(&queries{db: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx err: %v, rollback err: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (q *queries) InsertProduct(ctx context.Context, product domain.Product) (domain.Product, error) {
	err := q.db.QueryRowContext(ctx, insertProductSQL, product.ID, product.Name, product.Price).
		Scan(&product.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.Product{}, domain.ErrDuplicateProduct
		}
		return domain.Product{}, fmt.Errorf("insert product: %w", err)
	}
	return product, nil
}

func (q *queries) GetProductByName(ctx context.Context, name string) (domain.Product, error) {
	var p domain.Product
	err := q.db.QueryRowContext(ctx, getProductByNameSQL, name).
		Scan(&p.ID, &p.Name, &p.Price, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Product{}, domain.ErrNotFound
		}
		return domain.Product{}, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

func (q *queries) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res, err := q.db.ExecContext(ctx, deleteProductSQL, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ListProducts returns every product in publication order.
func (q *queries) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := q.db.QueryContext(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.Price, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}
