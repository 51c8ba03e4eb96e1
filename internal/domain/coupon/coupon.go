// Package coupon holds the coupon entity and the discount policy applied at
// cart total computation.
package coupon

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

var (
	// ErrNotFound is returned when no coupon matches the requested code.
	ErrNotFound = errors.New("coupon not found")
	// ErrAlreadyApplied is returned when the cart already carries a coupon.
	// The existing coupon must be removed before another can be applied.
	ErrAlreadyApplied = errors.New("coupon already applied")
	// ErrBelowMinimum is returned when the cart subtotal does not reach the
	// coupon's minimum qualifying amount.
	ErrBelowMinimum = errors.New("cart total below coupon minimum")
	// ErrExpired is returned when the coupon is flagged expired.
	ErrExpired = errors.New("coupon expired")
)

// Coupon is a discount rule, read-only to this core.
type Coupon struct {
	Code          string
	Discount      decimal.Decimal
	MinimumAmount decimal.Decimal
	Expired       bool
}

// Eligible reports whether the coupon may be attached to a cart with the
// given pre-discount subtotal. Checks run in fixed order, first failure wins:
// minimum amount, then expiration.
func (c *Coupon) Eligible(subtotal decimal.Decimal) error {
	if subtotal.LessThan(c.MinimumAmount) {
		return ErrBelowMinimum
	}
	if c.Expired {
		return ErrExpired
	}
	return nil
}

// Apply returns the discounted total for a subtotal under an attached coupon.
//
// When the subtotal has dropped below the coupon's minimum since attachment
// (an item removed after the coupon was applied), the discount still applies
// but the result is floored at zero. At or above the minimum the plain
// difference is returned; the caller applies the final minimum-charge floor.
func Apply(c *Coupon, subtotal decimal.Decimal) decimal.Decimal {
	total := subtotal.Sub(c.Discount)
	if subtotal.LessThan(c.MinimumAmount) && total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// Repository provides coupon lookups. FindByCode matches case-insensitively
// by substring (deliberately tolerant); when several coupons match, the first
// in stable code order wins so the choice is deterministic.
type Repository interface {
	FindByCode(ctx context.Context, code string) (*Coupon, error)
	// Get resolves an exact code, used to re-load a coupon already attached
	// to a cart. Returns ErrNotFound when the coupon has been deleted.
	Get(ctx context.Context, code string) (*Coupon, error)
}
