// Package handler exposes the cart, checkout, catalog, and account operations
// over HTTP. Routing is a plain ServeMux with method patterns; request bodies
// are small fixed structs, responses are encoded with jx.
package handler

import (
	"net/http"

	"github.com/oakrise/shopcart/internal/checkout"
	"github.com/oakrise/shopcart/internal/domain/account"
	"github.com/oakrise/shopcart/internal/domain/auth"
	"github.com/oakrise/shopcart/internal/domain/catalog"
	"github.com/oakrise/shopcart/internal/domain/cart"
)

// Handler implements the HTTP surface, delegating business logic to the
// domain services.
type Handler struct {
	catalog  catalog.Repository
	carts    *cart.Service
	checkout *checkout.Orchestrator
	accounts *account.Service
	apikeys  auth.Repository
	pepper   []byte
}

// NewHandler constructs a Handler with the required domain dependencies.
// pepper is the HMAC key for API key hashing.
func NewHandler(
	cat catalog.Repository,
	carts *cart.Service,
	co *checkout.Orchestrator,
	accounts *account.Service,
	apikeys auth.Repository,
	pepper []byte,
) *Handler {
	return &Handler{
		catalog:  cat,
		carts:    carts,
		checkout: co,
		accounts: accounts,
		apikeys:  apikeys,
		pepper:   pepper,
	}
}

// Routes registers every endpoint on a fresh mux. Cart and checkout routes
// require an authenticated user; the payment callback authenticates by
// signature instead, and catalog plus registration are public.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/products", h.listProducts)
	mux.HandleFunc("GET /api/products/{id}", h.getProduct)

	mux.HandleFunc("GET /api/cart", h.requireUser(h.getCart))
	mux.HandleFunc("POST /api/cart/items", h.requireUser(h.addItem))
	mux.HandleFunc("DELETE /api/cart/items/{id}", h.requireUser(h.removeItem))
	mux.HandleFunc("POST /api/cart/coupon", h.requireUser(h.applyCoupon))
	mux.HandleFunc("DELETE /api/cart/coupon", h.requireUser(h.removeCoupon))
	mux.HandleFunc("POST /api/checkout", h.requireUser(h.initiateCheckout))

	mux.HandleFunc("POST /api/payment/callback", h.paymentCallback)

	mux.HandleFunc("POST /api/register", h.register)
	mux.HandleFunc("POST /api/activate/{token}", h.activate)

	return mux
}
