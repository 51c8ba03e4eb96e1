package cart

import (
	"context"
	"hash/fnv"
	"sync"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/singleflight"

	"github.com/oakrise/shopcart/internal/domain/catalog"
	"github.com/oakrise/shopcart/internal/domain/coupon"
)

// View is a fully priced snapshot of a cart: its lines, the attached coupon
// (nil when none), the pre-discount subtotal, the chargeable total, and the
// ids of items whose product reference no longer resolves.
type View struct {
	Cart        *Cart
	Lines       []Line
	Coupon      *coupon.Coupon
	Subtotal    decimal.Decimal
	Total       decimal.Decimal
	Unpriceable []string
}

const lockStripes = 64

// Service encapsulates cart lifecycle business logic. Every operation takes
// the acting user's identity explicitly; there is no ambient current-user
// state.
//
// Concurrency: find-or-create is deduplicated per user through singleflight
// on top of the repository's atomic upsert; mutations of a single cart are
// serialized through striped locks so two concurrent coupon applications
// cannot both pass the "no coupon yet" check in one process. The repository
// guards remain authoritative across processes.
type Service struct {
	carts   Repository
	catalog catalog.Repository
	coupons coupon.Repository

	open  singleflight.Group
	locks [lockStripes]sync.Mutex
}

// NewService creates a cart Service with the required collaborators.
func NewService(carts Repository, cat catalog.Repository, coupons coupon.Repository) *Service {
	return &Service{
		carts:   carts,
		catalog: cat,
		coupons: coupons,
	}
}

func (s *Service) lock(cartID string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(cartID))
	return &s.locks[h.Sum32()%lockStripes]
}

// OpenCart returns the user's open cart, creating one when none exists, with
// pricing computed.
func (s *Service) OpenCart(ctx context.Context, userID string) (*View, error) {
	c, err := s.openCart(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, c)
}

func (s *Service) openCart(ctx context.Context, userID string) (*Cart, error) {
	v, err, _ := s.open.Do(userID, func() (any, error) {
		return s.carts.FindOrCreateOpen(ctx, userID)
	})
	if err != nil {
		return nil, errors.Wrap(err, "find or create open cart")
	}
	return v.(*Cart), nil
}

// view loads the cart's priced lines and attached coupon and computes totals.
// A coupon that was deleted after attachment degrades to "no coupon".
func (s *Service) view(ctx context.Context, c *Cart) (*View, error) {
	lines, err := s.carts.LoadLines(ctx, c.ID)
	if err != nil {
		return nil, errors.Wrap(err, "load cart lines")
	}

	var cp *coupon.Coupon
	if c.CouponCode != "" {
		cp, err = s.coupons.Get(ctx, c.CouponCode)
		if err != nil && !errors.Is(err, coupon.ErrNotFound) {
			return nil, errors.Wrap(err, "load attached coupon")
		}
	}

	subtotal, unpriceable := Subtotal(lines)
	return &View{
		Cart:        c,
		Lines:       lines,
		Coupon:      cp,
		Subtotal:    subtotal,
		Total:       Total(lines, cp),
		Unpriceable: unpriceable,
	}, nil
}

// AddItem resolves the product and optional variant selectors, then attaches
// a new item to the user's open cart (creating the cart when absent). Adding
// the same product twice yields two line items.
func (s *Service) AddItem(ctx context.Context, userID, productID, colorName, sizeName string) (*Item, error) {
	p, err := s.catalog.GetProduct(ctx, productID)
	if err != nil {
		return nil, err
	}

	item := &Item{
		ID:        uuid.New().String(),
		ProductID: p.ID,
	}

	if colorName != "" {
		v, err := s.catalog.GetVariant(ctx, catalog.VariantColor, colorName)
		if err != nil {
			return nil, err
		}
		item.ColorVariantID = v.ID
	}
	if sizeName != "" {
		v, err := s.catalog.GetVariant(ctx, catalog.VariantSize, sizeName)
		if err != nil {
			return nil, err
		}
		item.SizeVariantID = v.ID
	}

	c, err := s.openCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	mu := s.lock(c.ID)
	mu.Lock()
	defer mu.Unlock()

	item.CartID = c.ID
	if err := s.carts.InsertItem(ctx, item); err != nil {
		return nil, errors.Wrap(err, "insert cart item")
	}
	return item, nil
}

// RemoveItem deletes a cart item. Removing an absent or already-removed item
// is a no-op, so removal is safe to retry.
func (s *Service) RemoveItem(ctx context.Context, itemID string) error {
	return s.carts.DeleteItem(ctx, itemID)
}

// ApplyCoupon validates and attaches a coupon to the user's open cart.
// Rules run in fixed order, first failure wins: code lookup, one coupon per
// cart, minimum amount against the pre-discount subtotal, expiration.
func (s *Service) ApplyCoupon(ctx context.Context, userID, code string) (*View, error) {
	cp, err := s.coupons.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	c, err := s.openCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	mu := s.lock(c.ID)
	mu.Lock()
	defer mu.Unlock()

	if c.CouponCode != "" {
		return nil, coupon.ErrAlreadyApplied
	}

	lines, err := s.carts.LoadLines(ctx, c.ID)
	if err != nil {
		return nil, errors.Wrap(err, "load cart lines")
	}
	subtotal, _ := Subtotal(lines)

	if err := cp.Eligible(subtotal); err != nil {
		return nil, err
	}

	if err := s.carts.SetCoupon(ctx, c.ID, cp.Code); err != nil {
		return nil, err
	}
	c.CouponCode = cp.Code

	return &View{
		Cart:     c,
		Lines:    lines,
		Coupon:   cp,
		Subtotal: subtotal,
		Total:    Total(lines, cp),
	}, nil
}

// RemoveCoupon clears any coupon from the user's open cart. Removing an
// absent coupon, or having no open cart at all, is a no-op.
func (s *Service) RemoveCoupon(ctx context.Context, userID string) error {
	c, err := s.carts.GetOpen(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return errors.Wrap(err, "get open cart")
	}

	mu := s.lock(c.ID)
	mu.Lock()
	defer mu.Unlock()

	return s.carts.ClearCoupon(ctx, c.ID)
}

// AttachGatewayOrder stores a freshly created gateway order id on the cart,
// transitioning Open -> AwaitingPayment.
func (s *Service) AttachGatewayOrder(ctx context.Context, cartID, orderID string) error {
	mu := s.lock(cartID)
	mu.Lock()
	defer mu.Unlock()

	return s.carts.SetGatewayOrder(ctx, cartID, orderID)
}

// ConfirmPaid marks the cart identified by the gateway order id as paid.
// Idempotent: confirming an already-paid cart returns it unchanged. The
// terminal transition takes precedence over concurrent edits; the repository
// guard fails those with ErrAlreadyPaid.
func (s *Service) ConfirmPaid(ctx context.Context, orderID, paymentID, signature string) (*Cart, error) {
	return s.carts.MarkPaid(ctx, orderID, paymentID, signature)
}
