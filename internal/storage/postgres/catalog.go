package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oakrise/shopcart/internal/domain/catalog"
)

const (
	listProductsSQL = `SELECT id, name, price, category FROM products ORDER BY id`

	getProductSQL = `SELECT id, name, price, category FROM products WHERE id = $1`

	getVariantSQL = `SELECT id, kind, name, price FROM variants WHERE kind = $1 AND name = $2`
)

var _ catalog.Repository = (*CatalogRepository)(nil)

// CatalogRepository implements catalog.Repository backed by PostgreSQL.
type CatalogRepository struct {
	pool *pgxpool.Pool
}

// NewCatalogRepository returns a CatalogRepository that uses the given pool.
func NewCatalogRepository(pool *pgxpool.Pool) *CatalogRepository {
	return &CatalogRepository{pool: pool}
}

// ListProducts returns all products ordered by id.
func (r *CatalogRepository) ListProducts(ctx context.Context) ([]catalog.Product, error) {
	rows, err := r.pool.Query(ctx, listProductsSQL)
	if err != nil {
		return nil, fmt.Errorf("listing products: %w", err)
	}
	return pgx.CollectRows(rows, scanProduct)
}

// GetProduct returns a single product by id.
func (r *CatalogRepository) GetProduct(ctx context.Context, id string) (*catalog.Product, error) {
	rows, err := r.pool.Query(ctx, getProductSQL, id)
	if err != nil {
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrProductNotFound
		}
		return nil, fmt.Errorf("getting product %q: %w", id, err)
	}
	return &p, nil
}

// GetVariant resolves a variant by kind and human-readable name.
func (r *CatalogRepository) GetVariant(ctx context.Context, kind catalog.VariantKind, name string) (*catalog.Variant, error) {
	rows, err := r.pool.Query(ctx, getVariantSQL, string(kind), name)
	if err != nil {
		return nil, fmt.Errorf("getting %s variant %q: %w", kind, name, err)
	}

	v, err := pgx.CollectExactlyOneRow(rows, scanVariant)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, catalog.ErrVariantNotFound
		}
		return nil, fmt.Errorf("getting %s variant %q: %w", kind, name, err)
	}
	return &v, nil
}

func scanProduct(row pgx.CollectableRow) (catalog.Product, error) {
	var p catalog.Product
	err := row.Scan(&p.ID, &p.Name, &p.Price, &p.Category)
	return p, err
}

func scanVariant(row pgx.CollectableRow) (catalog.Variant, error) {
	var (
		v    catalog.Variant
		kind string
	)
	err := row.Scan(&v.ID, &kind, &v.Name, &v.Price)
	v.Kind = catalog.VariantKind(kind)
	return v, err
}
