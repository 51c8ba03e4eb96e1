package postgres

import (
	"context"
	"fmt"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/oakrise/shopcart/internal/domain/cart"
	"github.com/oakrise/shopcart/internal/domain/catalog"
	"github.com/oakrise/shopcart/internal/domain/coupon"
)

const (
	cartColumns = `id, user_id, coupon_code, is_paid,
		gateway_order_id, gateway_payment_id, gateway_signature, created_at`

	getOpenCartSQL = `SELECT ` + cartColumns + ` FROM carts
		WHERE user_id = $1 AND NOT is_paid`

	getCartByGatewayOrderSQL = `SELECT ` + cartColumns + ` FROM carts
		WHERE gateway_order_id = $1`

	insertCartSQL = `INSERT INTO carts (id, user_id) VALUES ($1, $2)
		RETURNING created_at`

	// The paid-cart guard lives in the WHERE clause of every mutation so the
	// terminal transition wins over racing edits regardless of process.
	insertItemSQL = `INSERT INTO cart_items (id, cart_id, product_id, color_variant_id, size_variant_id)
		SELECT $1, c.id, $3, $4, $5 FROM carts c WHERE c.id = $2 AND NOT c.is_paid`

	deleteItemSQL = `DELETE FROM cart_items ci USING carts c
		WHERE ci.id = $1 AND c.id = ci.cart_id AND NOT c.is_paid`

	itemExistsSQL = `SELECT EXISTS (SELECT 1 FROM cart_items WHERE id = $1)`

	loadLinesSQL = `SELECT ci.id,
			p.id, p.name, p.price, p.category,
			cv.id, cv.name, cv.price,
			sv.id, sv.name, sv.price
		FROM cart_items ci
		LEFT JOIN products p ON p.id = ci.product_id
		LEFT JOIN variants cv ON cv.id = ci.color_variant_id
		LEFT JOIN variants sv ON sv.id = ci.size_variant_id
		WHERE ci.cart_id = $1
		ORDER BY ci.created_at, ci.id`

	setCouponSQL = `UPDATE carts SET coupon_code = $2
		WHERE id = $1 AND coupon_code IS NULL AND NOT is_paid`

	clearCouponSQL = `UPDATE carts SET coupon_code = NULL
		WHERE id = $1 AND NOT is_paid`

	setGatewayOrderSQL = `UPDATE carts SET gateway_order_id = $2
		WHERE id = $1 AND NOT is_paid`

	cartStatusSQL = `SELECT coupon_code IS NOT NULL, is_paid FROM carts WHERE id = $1`

	markPaidSQL = `UPDATE carts SET is_paid = TRUE, gateway_payment_id = $2, gateway_signature = $3
		WHERE gateway_order_id = $1 AND NOT is_paid
		RETURNING ` + cartColumns
)

var _ cart.Repository = (*CartRepository)(nil)

// CartRepository implements cart.Repository backed by PostgreSQL.
type CartRepository struct {
	pool *pgxpool.Pool
}

// NewCartRepository returns a CartRepository that uses the given pool.
func NewCartRepository(pool *pgxpool.Pool) *CartRepository {
	return &CartRepository{pool: pool}
}

// FindOrCreateOpen returns the user's open cart, creating one when none
// exists. The check-then-insert runs inside a transaction holding a per-user
// advisory lock, so concurrent calls for the same user serialize and observe
// one cart; the partial unique index on (user_id) WHERE NOT is_paid backs
// this up.
func (r *CartRepository) FindOrCreateOpen(ctx context.Context, userID string) (*cart.Cart, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin find-or-create: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, userID); err != nil {
		return nil, fmt.Errorf("acquire user lock: %w", err)
	}

	c, err := scanCart(tx.QueryRow(ctx, getOpenCartSQL, userID))
	switch {
	case err == nil:
	case errors.Is(err, pgx.ErrNoRows):
		c = &cart.Cart{ID: newID(), UserID: userID}
		if err := tx.QueryRow(ctx, insertCartSQL, c.ID, c.UserID).Scan(&c.CreatedAt); err != nil {
			return nil, fmt.Errorf("create cart for user %q: %w", userID, err)
		}
	default:
		return nil, fmt.Errorf("find open cart for user %q: %w", userID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit find-or-create: %w", err)
	}
	return c, nil
}

// GetOpen returns the user's open cart, or cart.ErrNotFound.
func (r *CartRepository) GetOpen(ctx context.Context, userID string) (*cart.Cart, error) {
	c, err := scanCart(r.pool.QueryRow(ctx, getOpenCartSQL, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrNotFound
		}
		return nil, fmt.Errorf("get open cart for user %q: %w", userID, err)
	}
	return c, nil
}

// GetByGatewayOrderID resolves a cart by its stored gateway order id.
func (r *CartRepository) GetByGatewayOrderID(ctx context.Context, orderID string) (*cart.Cart, error) {
	c, err := scanCart(r.pool.QueryRow(ctx, getCartByGatewayOrderSQL, orderID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, cart.ErrNotFound
		}
		return nil, fmt.Errorf("get cart by gateway order %q: %w", orderID, err)
	}
	return c, nil
}

// InsertItem attaches a new item to its cart, refusing paid carts.
func (r *CartRepository) InsertItem(ctx context.Context, item *cart.Item) error {
	tag, err := r.pool.Exec(ctx, insertItemSQL,
		item.ID, item.CartID, item.ProductID,
		nullable(item.ColorVariantID), nullable(item.SizeVariantID),
	)
	if err != nil {
		return fmt.Errorf("insert item into cart %q: %w", item.CartID, err)
	}
	if tag.RowsAffected() == 0 {
		return r.cartMutationRefused(ctx, item.CartID)
	}
	return nil
}

// DeleteItem removes an item from an unpaid cart. Absent items are a no-op;
// items that survive because their cart is paid fail with ErrAlreadyPaid.
func (r *CartRepository) DeleteItem(ctx context.Context, itemID string) error {
	tag, err := r.pool.Exec(ctx, deleteItemSQL, itemID)
	if err != nil {
		return fmt.Errorf("delete item %q: %w", itemID, err)
	}
	if tag.RowsAffected() > 0 {
		return nil
	}

	var exists bool
	if err := r.pool.QueryRow(ctx, itemExistsSQL, itemID).Scan(&exists); err != nil {
		return fmt.Errorf("check item %q: %w", itemID, err)
	}
	if exists {
		return cart.ErrAlreadyPaid
	}
	return nil
}

// LoadLines returns the cart's items joined with current catalog prices.
// Dangling references scan as NULL and surface as nil entities.
func (r *CartRepository) LoadLines(ctx context.Context, cartID string) ([]cart.Line, error) {
	rows, err := r.pool.Query(ctx, loadLinesSQL, cartID)
	if err != nil {
		return nil, fmt.Errorf("load lines for cart %q: %w", cartID, err)
	}
	return pgx.CollectRows(rows, scanLine)
}

// SetCoupon attaches a coupon to a coupon-less unpaid cart.
func (r *CartRepository) SetCoupon(ctx context.Context, cartID, code string) error {
	tag, err := r.pool.Exec(ctx, setCouponSQL, cartID, code)
	if err != nil {
		return fmt.Errorf("set coupon on cart %q: %w", cartID, err)
	}
	if tag.RowsAffected() == 0 {
		return r.cartMutationRefused(ctx, cartID)
	}
	return nil
}

// ClearCoupon removes any coupon from an unpaid cart; idempotent.
func (r *CartRepository) ClearCoupon(ctx context.Context, cartID string) error {
	tag, err := r.pool.Exec(ctx, clearCouponSQL, cartID)
	if err != nil {
		return fmt.Errorf("clear coupon on cart %q: %w", cartID, err)
	}
	if tag.RowsAffected() == 0 {
		return r.cartMutationRefused(ctx, cartID)
	}
	return nil
}

// SetGatewayOrder stores the gateway order id on an unpaid cart. Re-initiated
// checkouts overwrite the previous order id.
func (r *CartRepository) SetGatewayOrder(ctx context.Context, cartID, orderID string) error {
	tag, err := r.pool.Exec(ctx, setGatewayOrderSQL, cartID, orderID)
	if err != nil {
		return fmt.Errorf("set gateway order on cart %q: %w", cartID, err)
	}
	if tag.RowsAffected() == 0 {
		return r.cartMutationRefused(ctx, cartID)
	}
	return nil
}

// MarkPaid flips the cart owning the gateway order id to paid. Re-confirming
// an already-paid cart returns it unchanged.
func (r *CartRepository) MarkPaid(ctx context.Context, orderID, paymentID, signature string) (*cart.Cart, error) {
	c, err := scanCart(r.pool.QueryRow(ctx, markPaidSQL, orderID, paymentID, signature))
	if err == nil {
		return c, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("mark cart paid for gateway order %q: %w", orderID, err)
	}

	// Nothing transitioned: either the callback was re-delivered for a paid
	// cart (idempotent success) or the order id is unknown.
	return r.GetByGatewayOrderID(ctx, orderID)
}

// cartMutationRefused diagnoses a mutation that matched no rows.
func (r *CartRepository) cartMutationRefused(ctx context.Context, cartID string) error {
	var hasCoupon, isPaid bool
	err := r.pool.QueryRow(ctx, cartStatusSQL, cartID).Scan(&hasCoupon, &isPaid)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return cart.ErrNotFound
	case err != nil:
		return fmt.Errorf("inspect cart %q: %w", cartID, err)
	case isPaid:
		return cart.ErrAlreadyPaid
	case hasCoupon:
		return coupon.ErrAlreadyApplied
	default:
		return cart.ErrNotFound
	}
}

type cartRow interface {
	Scan(dest ...any) error
}

func scanCart(row cartRow) (*cart.Cart, error) {
	var (
		c                                 cart.Cart
		couponCode, orderID, payID, sigID *string
	)
	err := row.Scan(
		&c.ID, &c.UserID, &couponCode, &c.IsPaid,
		&orderID, &payID, &sigID, &c.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.CouponCode = deref(couponCode)
	c.GatewayOrderID = deref(orderID)
	c.GatewayPaymentID = deref(payID)
	c.GatewaySignature = deref(sigID)
	return &c, nil
}

func scanLine(row pgx.CollectableRow) (cart.Line, error) {
	var (
		l cart.Line

		productID, productName, productCategory *string
		productPrice                            *decimal.Decimal

		colorID, colorName *string
		colorPrice         *decimal.Decimal

		sizeID, sizeName *string
		sizePrice        *decimal.Decimal
	)
	err := row.Scan(
		&l.ItemID,
		&productID, &productName, &productPrice, &productCategory,
		&colorID, &colorName, &colorPrice,
		&sizeID, &sizeName, &sizePrice,
	)
	if err != nil {
		return l, err
	}

	if productID != nil {
		l.Product = &catalog.Product{
			ID:       *productID,
			Name:     deref(productName),
			Price:    derefDecimal(productPrice),
			Category: deref(productCategory),
		}
	}
	if colorID != nil {
		l.Color = &catalog.Variant{
			ID:    *colorID,
			Kind:  catalog.VariantColor,
			Name:  deref(colorName),
			Price: derefDecimal(colorPrice),
		}
	}
	if sizeID != nil {
		l.Size = &catalog.Variant{
			ID:    *sizeID,
			Kind:  catalog.VariantSize,
			Name:  deref(sizeName),
			Price: derefDecimal(sizePrice),
		}
	}
	return l, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func derefDecimal(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}
