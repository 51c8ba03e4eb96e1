//go:build integration

package integration

import (
	"net/http"
	"testing"
)

type addItemRequest struct {
	ProductID string `json:"productId"`
	Color     string `json:"color,omitempty"`
	Size      string `json:"size,omitempty"`
}

type applyCouponRequest struct {
	Code string `json:"code"`
}

type callbackRequest struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
}

func getCart(t *testing.T) cartResponse {
	t.Helper()
	resp := doReq(t, http.MethodGet, "/api/cart", nil, testAPIKey)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get cart: expected 200, got %d", resp.StatusCode)
	}
	return decodeJSON[cartResponse](t, resp)
}

func clearCart(t *testing.T) {
	t.Helper()
	resp := doReq(t, http.MethodDelete, "/api/cart/coupon", nil, testAPIKey)
	resp.Body.Close()
	for _, line := range getCart(t).Items {
		r := doReq(t, http.MethodDelete, "/api/cart/items/"+line.ID, nil, testAPIKey)
		r.Body.Close()
	}
}

func TestCart_NoAuth(t *testing.T) {
	resp := doReq(t, http.MethodGet, "/api/cart", nil, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestCart_InvalidKey(t *testing.T) {
	resp := doReq(t, http.MethodGet, "/api/cart", nil, "wrong-key")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestCart_EmptyCart(t *testing.T) {
	clearCart(t)

	cart := getCart(t)
	if cart.State != "open" {
		t.Errorf("state: got %q, want %q", cart.State, "open")
	}
	if cart.Subtotal != "0.00" {
		t.Errorf("subtotal: got %q, want %q", cart.Subtotal, "0.00")
	}
	// Empty carts still price at the minimum chargeable amount.
	if cart.Total != "1.00" {
		t.Errorf("total: got %q, want %q", cart.Total, "1.00")
	}
}

func TestCart_AddAndRemoveItem(t *testing.T) {
	clearCart(t)

	resp := doReq(t, http.MethodPost, "/api/cart/items",
		addItemRequest{ProductID: "tshirt-classic", Size: "XL", Color: "navy"}, testAPIKey)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("add item: expected 201, got %d", resp.StatusCode)
	}
	item := decodeJSON[itemResponse](t, resp)
	resp.Body.Close()

	// 500.00 base + 100.00 XL + 50.00 navy
	cart := getCart(t)
	if cart.Subtotal != "650.00" {
		t.Errorf("subtotal: got %q, want %q", cart.Subtotal, "650.00")
	}
	if len(cart.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(cart.Items))
	}

	del := doReq(t, http.MethodDelete, "/api/cart/items/"+item.ID, nil, testAPIKey)
	del.Body.Close()
	if del.StatusCode != http.StatusNoContent {
		t.Fatalf("remove item: expected 204, got %d", del.StatusCode)
	}

	if got := getCart(t); len(got.Items) != 0 {
		t.Errorf("expected empty cart, got %d items", len(got.Items))
	}
}

func TestCart_RemoveItemTwice(t *testing.T) {
	clearCart(t)

	resp := doReq(t, http.MethodPost, "/api/cart/items",
		addItemRequest{ProductID: "cap-logo"}, testAPIKey)
	item := decodeJSON[itemResponse](t, resp)
	resp.Body.Close()

	for range 2 {
		del := doReq(t, http.MethodDelete, "/api/cart/items/"+item.ID, nil, testAPIKey)
		del.Body.Close()
		if del.StatusCode != http.StatusNoContent {
			t.Fatalf("remove item: expected 204, got %d", del.StatusCode)
		}
	}
}

func TestCart_UnknownProduct(t *testing.T) {
	resp := doReq(t, http.MethodPost, "/api/cart/items",
		addItemRequest{ProductID: "no-such-product"}, testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCart_UnknownVariant(t *testing.T) {
	resp := doReq(t, http.MethodPost, "/api/cart/items",
		addItemRequest{ProductID: "tshirt-classic", Size: "XXXL"}, testAPIKey)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

func TestCart_CouponFlow(t *testing.T) {
	clearCart(t)

	// Subtotal 500.00, WELCOME200 needs 400.00 and discounts 200.00.
	resp := doReq(t, http.MethodPost, "/api/cart/items",
		addItemRequest{ProductID: "tshirt-classic"}, testAPIKey)
	resp.Body.Close()

	// Lookup is a case-insensitive substring match, so a partial code resolves.
	apply := doReq(t, http.MethodPost, "/api/cart/coupon",
		applyCouponRequest{Code: "welcome"}, testAPIKey)
	if apply.StatusCode != http.StatusOK {
		t.Fatalf("apply coupon: expected 200, got %d", apply.StatusCode)
	}
	cart := decodeJSON[cartResponse](t, apply)
	apply.Body.Close()

	if cart.Coupon == nil || cart.Coupon.Code != "WELCOME200" {
		t.Fatalf("coupon: got %+v, want WELCOME200", cart.Coupon)
	}
	if cart.Total != "300.00" {
		t.Errorf("total: got %q, want %q", cart.Total, "300.00")
	}

	// A second coupon on the same cart conflicts.
	again := doReq(t, http.MethodPost, "/api/cart/coupon",
		applyCouponRequest{Code: "FESTIVE500"}, testAPIKey)
	again.Body.Close()
	if again.StatusCode != http.StatusConflict {
		t.Fatalf("second coupon: expected 409, got %d", again.StatusCode)
	}

	// Removal is idempotent.
	for range 2 {
		del := doReq(t, http.MethodDelete, "/api/cart/coupon", nil, testAPIKey)
		del.Body.Close()
		if del.StatusCode != http.StatusNoContent {
			t.Fatalf("remove coupon: expected 204, got %d", del.StatusCode)
		}
	}

	if got := getCart(t); got.Coupon != nil {
		t.Errorf("coupon still attached after removal: %+v", got.Coupon)
	}
}

func TestCart_CouponBelowMinimum(t *testing.T) {
	clearCart(t)

	// Subtotal 300.00 < FESTIVE500's 1000.00 minimum.
	resp := doReq(t, http.MethodPost, "/api/cart/items",
		addItemRequest{ProductID: "cap-logo"}, testAPIKey)
	resp.Body.Close()

	apply := doReq(t, http.MethodPost, "/api/cart/coupon",
		applyCouponRequest{Code: "FESTIVE500"}, testAPIKey)
	defer apply.Body.Close()

	if apply.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", apply.StatusCode)
	}
}

func TestCart_ExpiredCoupon(t *testing.T) {
	clearCart(t)

	resp := doReq(t, http.MethodPost, "/api/cart/items",
		addItemRequest{ProductID: "tshirt-classic"}, testAPIKey)
	resp.Body.Close()

	apply := doReq(t, http.MethodPost, "/api/cart/coupon",
		applyCouponRequest{Code: "OLDTIMES50"}, testAPIKey)
	defer apply.Body.Close()

	if apply.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", apply.StatusCode)
	}
}

func TestCart_UnknownCoupon(t *testing.T) {
	apply := doReq(t, http.MethodPost, "/api/cart/coupon",
		applyCouponRequest{Code: "NOSUCHCODE"}, testAPIKey)
	defer apply.Body.Close()

	if apply.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", apply.StatusCode)
	}
}

func TestCheckout_GatewayUnavailable(t *testing.T) {
	clearCart(t)

	resp := doReq(t, http.MethodPost, "/api/cart/items",
		addItemRequest{ProductID: "tshirt-classic"}, testAPIKey)
	resp.Body.Close()

	// The compose file points the gateway at an unroutable address, so a
	// checkout attempt must surface 502 and leave the cart open.
	co := doReq(t, http.MethodPost, "/api/checkout", nil, testAPIKey)
	co.Body.Close()
	if co.StatusCode != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", co.StatusCode)
	}

	if cart := getCart(t); cart.State != "open" {
		t.Errorf("state after failed checkout: got %q, want %q", cart.State, "open")
	}
}

func TestPaymentCallback_BadSignature(t *testing.T) {
	resp := doReq(t, http.MethodPost, "/api/payment/callback",
		callbackRequest{OrderID: "order_x", PaymentID: "pay_x", Signature: "deadbeef"}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestPaymentCallback_UnknownOrder(t *testing.T) {
	resp := doReq(t, http.MethodPost, "/api/payment/callback",
		callbackRequest{
			OrderID:   "order_missing",
			PaymentID: "pay_x",
			Signature: signCallback("order_missing", "pay_x"),
		}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}

type registerRequest struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

func TestRegister(t *testing.T) {
	resp := doReq(t, http.MethodPost, "/api/register",
		registerRequest{Email: "newuser@example.com", Name: "New User"}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	// demo@example.com is seeded.
	resp := doReq(t, http.MethodPost, "/api/register",
		registerRequest{Email: "demo@example.com"}, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409, got %d", resp.StatusCode)
	}
}

func TestActivate_InvalidToken(t *testing.T) {
	resp := doReq(t, http.MethodPost, "/api/activate/not-a-real-token", nil, "")
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}
}
