package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oakrise/shopcart/internal/domain/coupon"
)

const (
	// Substring match is intentional; ORDER BY code makes multi-match
	// resolution deterministic.
	findCouponByCodeSQL = `SELECT code, discount_amount, minimum_amount, is_expired
		FROM coupons WHERE code ILIKE '%' || $1 || '%' ORDER BY code LIMIT 1`

	getCouponSQL = `SELECT code, discount_amount, minimum_amount, is_expired
		FROM coupons WHERE code = $1`
)

var _ coupon.Repository = (*CouponRepository)(nil)

// CouponRepository implements coupon.Repository backed by PostgreSQL.
type CouponRepository struct {
	pool *pgxpool.Pool
}

// NewCouponRepository returns a CouponRepository that uses the given pool.
func NewCouponRepository(pool *pgxpool.Pool) *CouponRepository {
	return &CouponRepository{pool: pool}
}

// FindByCode looks up a coupon by case-insensitive substring match.
// Returns coupon.ErrNotFound when nothing matches.
func (r *CouponRepository) FindByCode(ctx context.Context, code string) (*coupon.Coupon, error) {
	return r.query(ctx, findCouponByCodeSQL, code)
}

// Get resolves an exact coupon code.
func (r *CouponRepository) Get(ctx context.Context, code string) (*coupon.Coupon, error) {
	return r.query(ctx, getCouponSQL, code)
}

func (r *CouponRepository) query(ctx context.Context, sql, code string) (*coupon.Coupon, error) {
	rows, err := r.pool.Query(ctx, sql, code)
	if err != nil {
		return nil, fmt.Errorf("finding coupon %q: %w", code, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCoupon)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, coupon.ErrNotFound
		}
		return nil, fmt.Errorf("finding coupon %q: %w", code, err)
	}
	return &c, nil
}

func scanCoupon(row pgx.CollectableRow) (coupon.Coupon, error) {
	var c coupon.Coupon
	err := row.Scan(&c.Code, &c.Discount, &c.MinimumAmount, &c.Expired)
	return c, err
}
