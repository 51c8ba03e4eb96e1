// Package cart owns the cart lifecycle: pricing, coupon application, and the
// Open -> AwaitingPayment -> Paid state machine.
package cart

import (
	"context"
	"time"

	"github.com/go-faster/errors"

	"github.com/oakrise/shopcart/internal/domain/catalog"
)

var (
	// ErrNotFound is returned when a cart cannot be resolved, including a
	// payment callback carrying an unknown or forged gateway order id.
	ErrNotFound = errors.New("cart not found")
	// ErrAlreadyPaid is returned on any mutation attempt against a paid cart.
	// Paid is terminal.
	ErrAlreadyPaid = errors.New("cart already paid")
)

// State describes where a cart is in its payment lifecycle.
type State string

const (
	// StateOpen: unpaid, no gateway order created yet.
	StateOpen State = "open"
	// StateAwaitingPayment: unpaid, a gateway order exists.
	StateAwaitingPayment State = "awaiting_payment"
	// StatePaid is terminal.
	StatePaid State = "paid"
)

// Cart is a user's mutable collection of unpurchased selections plus the
// gateway identifiers accumulated during checkout.
type Cart struct {
	ID               string
	UserID           string
	CouponCode       string
	IsPaid           bool
	GatewayOrderID   string
	GatewayPaymentID string
	GatewaySignature string
	CreatedAt        time.Time
}

// State derives the lifecycle state from the paid flag and gateway order id.
// IsPaid is monotonic: once true it never reverts.
func (c *Cart) State() State {
	switch {
	case c.IsPaid:
		return StatePaid
	case c.GatewayOrderID != "":
		return StateAwaitingPayment
	default:
		return StateOpen
	}
}

// Item is one product selection inside a cart. Variant references are
// optional; any reference may degrade to empty if its backing entity is
// deleted from the catalog.
type Item struct {
	ID             string
	CartID         string
	ProductID      string
	ColorVariantID string
	SizeVariantID  string
}

// Line is a cart item joined with its priced catalog entities, the unit the
// pricing engine works on. Product is nil when the backing product no longer
// resolves; such a line is unpriceable and contributes zero to the subtotal.
type Line struct {
	ItemID  string
	Product *catalog.Product
	Color   *catalog.Variant
	Size    *catalog.Variant
}

// Repository defines persistence for carts and their items. All mutating
// operations must refuse paid carts (ErrAlreadyPaid) so a concurrent payment
// confirmation always wins over an in-flight edit.
type Repository interface {
	// FindOrCreateOpen returns the user's open cart, creating one when none
	// exists. Implementations must be atomic per user: two concurrent calls
	// for the same user observe the same cart.
	FindOrCreateOpen(ctx context.Context, userID string) (*Cart, error)

	// GetOpen returns the user's open cart, or ErrNotFound.
	GetOpen(ctx context.Context, userID string) (*Cart, error)

	// GetByGatewayOrderID resolves a cart by its stored gateway order id,
	// or ErrNotFound.
	GetByGatewayOrderID(ctx context.Context, orderID string) (*Cart, error)

	// InsertItem attaches a new item to its cart.
	InsertItem(ctx context.Context, item *Item) error

	// DeleteItem removes an item. Deleting an absent item is a no-op.
	DeleteItem(ctx context.Context, itemID string) error

	// LoadLines returns the cart's items joined with their current catalog
	// prices. References that no longer resolve come back nil.
	LoadLines(ctx context.Context, cartID string) ([]Line, error)

	// SetCoupon attaches a coupon to a cart that has none. Returns
	// coupon.ErrAlreadyApplied when a coupon is present.
	SetCoupon(ctx context.Context, cartID, code string) error

	// ClearCoupon removes any attached coupon. Clearing an absent coupon is
	// a no-op.
	ClearCoupon(ctx context.Context, cartID string) error

	// SetGatewayOrder stores the gateway order id (Open -> AwaitingPayment).
	SetGatewayOrder(ctx context.Context, cartID, orderID string) error

	// MarkPaid flips the cart identified by gateway order id to paid and
	// records the payment id and signature. Confirming an already-paid cart
	// returns the cart unchanged: payment callbacks are delivered at least
	// once.
	MarkPaid(ctx context.Context, orderID, paymentID, signature string) (*Cart, error)
}
