package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/jx"

	"github.com/oakrise/shopcart/internal/domain/cart"
)

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	v, err := h.carts.OpenCart(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeView(e, v)
	})
}

type addItemRequest struct {
	ProductID string `json:"productId"`
	Color     string `json:"color,omitempty"`
	Size      string `json:"size,omitempty"`
}

func (h *Handler) addItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ProductID == "" {
		writeError(w, http.StatusBadRequest, "productId required")
		return
	}

	item, err := h.carts.AddItem(r.Context(), UserIDFromContext(r.Context()),
		req.ProductID, req.Color, req.Size)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("id")
		e.Str(item.ID)
		e.FieldStart("cartId")
		e.Str(item.CartID)
		e.FieldStart("productId")
		e.Str(item.ProductID)
		e.ObjEnd()
	})
}

func (h *Handler) removeItem(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.RemoveItem(r.Context(), r.PathValue("id")); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type applyCouponRequest struct {
	Code string `json:"code"`
}

func (h *Handler) applyCoupon(w http.ResponseWriter, r *http.Request) {
	var req applyCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		writeError(w, http.StatusBadRequest, "code required")
		return
	}

	v, err := h.carts.ApplyCoupon(r.Context(), UserIDFromContext(r.Context()), req.Code)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		encodeView(e, v)
	})
}

func (h *Handler) removeCoupon(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.RemoveCoupon(r.Context(), UserIDFromContext(r.Context())); err != nil {
		respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func encodeView(e *jx.Encoder, v *cart.View) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(v.Cart.ID)
	e.FieldStart("state")
	e.Str(string(v.Cart.State()))
	e.FieldStart("subtotal")
	e.Str(v.Subtotal.StringFixed(2))
	e.FieldStart("total")
	e.Str(v.Total.StringFixed(2))

	e.FieldStart("coupon")
	if v.Coupon == nil {
		e.Null()
	} else {
		e.ObjStart()
		e.FieldStart("code")
		e.Str(v.Coupon.Code)
		e.FieldStart("discount")
		e.Str(v.Coupon.Discount.StringFixed(2))
		e.FieldStart("minimumAmount")
		e.Str(v.Coupon.MinimumAmount.StringFixed(2))
		e.ObjEnd()
	}

	e.FieldStart("items")
	e.ArrStart()
	for i := range v.Lines {
		encodeLine(e, &v.Lines[i])
	}
	e.ArrEnd()

	if len(v.Unpriceable) > 0 {
		// Lines whose product vanished; priced at zero, flagged for cleanup.
		e.FieldStart("unpriceableItems")
		e.ArrStart()
		for _, id := range v.Unpriceable {
			e.Str(id)
		}
		e.ArrEnd()
	}

	e.ObjEnd()
}

func encodeLine(e *jx.Encoder, l *cart.Line) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(l.ItemID)
	e.FieldStart("price")
	e.Str(cart.Price(*l).StringFixed(2))

	e.FieldStart("product")
	if l.Product == nil {
		e.Null()
	} else {
		encodeProduct(e, l.Product)
	}

	if l.Color != nil {
		e.FieldStart("color")
		encodeVariant(e, l.Color)
	}
	if l.Size != nil {
		e.FieldStart("size")
		encodeVariant(e, l.Size)
	}

	e.ObjEnd()
}
