// Package checkout bridges the cart lifecycle to the external payment
// gateway: it creates remote payment orders and reconciles confirmation
// callbacks into the terminal paid state.
package checkout

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/go-faster/errors"

	"github.com/oakrise/shopcart/internal/domain/cart"
)

// ErrBadSignature is returned when a payment callback's signature does not
// verify against the shared secret. The callback is untrusted and no state
// changes.
var ErrBadSignature = errors.New("invalid payment signature")

// GatewayError wraps a failed or timed-out gateway call. The cart is left in
// its prior state; retrying is the caller's decision.
type GatewayError struct {
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("payment gateway: %v", e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// GatewayOrder is the gateway's record of a created payment order. Raw keeps
// the unparsed response for audit logging.
type GatewayOrder struct {
	ID  string
	Raw []byte
}

// Gateway creates chargeable orders on the external payment service. Amounts
// are transmitted in the gateway's minor currency unit.
type Gateway interface {
	CreateOrder(ctx context.Context, amountMinor int64, currency string) (*GatewayOrder, error)
}

// PaymentIntent describes a created gateway order for the caller to hand to
// the end user's payment flow.
type PaymentIntent struct {
	CartID         string
	GatewayOrderID string
	AmountMinor    int64
	Currency       string
}

// Orchestrator drives a cart through checkout and payment confirmation.
type Orchestrator struct {
	carts    *cart.Service
	gateway  Gateway
	secret   []byte
	currency string
}

// NewOrchestrator creates an Orchestrator. secret is the shared webhook
// secret used to verify payment callbacks.
func NewOrchestrator(carts *cart.Service, gateway Gateway, secret []byte, currency string) *Orchestrator {
	return &Orchestrator{
		carts:    carts,
		gateway:  gateway,
		secret:   secret,
		currency: currency,
	}
}

// InitiateCheckout computes the cart's chargeable total, creates a gateway
// order for it in minor units, and stores the returned order id on the cart
// (Open -> AwaitingPayment).
//
// The cart stays mutable while awaiting payment; an edit after checkout can
// make the gateway-side quote diverge from the recomputed total. Re-running
// InitiateCheckout creates a fresh gateway order with the current total and
// replaces the stored order id.
//
// A gateway failure leaves the cart exactly as it was and surfaces as a
// *GatewayError.
func (o *Orchestrator) InitiateCheckout(ctx context.Context, userID string) (*PaymentIntent, error) {
	v, err := o.carts.OpenCart(ctx, userID)
	if err != nil {
		return nil, err
	}

	// Two-decimal currency: 1.00 -> 100 minor units.
	amountMinor := v.Total.Shift(2).IntPart()

	order, err := o.gateway.CreateOrder(ctx, amountMinor, o.currency)
	if err != nil {
		return nil, &GatewayError{Err: err}
	}

	if err := o.carts.AttachGatewayOrder(ctx, v.Cart.ID, order.ID); err != nil {
		return nil, errors.Wrap(err, "store gateway order id")
	}

	return &PaymentIntent{
		CartID:         v.Cart.ID,
		GatewayOrderID: order.ID,
		AmountMinor:    amountMinor,
		Currency:       o.currency,
	}, nil
}

// ConfirmPayment reconciles a payment callback. The signature is verified
// before anything is trusted; then the cart owning the gateway order id is
// marked paid. Idempotent: re-confirming a paid cart succeeds with the same
// terminal cart. Unknown order ids fail with cart.ErrNotFound.
func (o *Orchestrator) ConfirmPayment(ctx context.Context, orderID, paymentID, signature string) (*cart.Cart, error) {
	if !o.verifySignature(orderID, paymentID, signature) {
		return nil, ErrBadSignature
	}
	return o.carts.ConfirmPaid(ctx, orderID, paymentID, signature)
}

// verifySignature checks the callback signature: the hex HMAC-SHA256 of
// "orderID|paymentID" under the shared secret, compared in constant time.
func (o *Orchestrator) verifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, o.secret)
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := mac.Sum(nil)

	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	return hmac.Equal(expected, got)
}
