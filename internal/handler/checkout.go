package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/jx"
)

func (h *Handler) initiateCheckout(w http.ResponseWriter, r *http.Request) {
	intent, err := h.checkout.InitiateCheckout(r.Context(), UserIDFromContext(r.Context()))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("cartId")
		e.Str(intent.CartID)
		e.FieldStart("gatewayOrderId")
		e.Str(intent.GatewayOrderID)
		e.FieldStart("amount")
		e.Int64(intent.AmountMinor)
		e.FieldStart("currency")
		e.Str(intent.Currency)
		e.ObjEnd()
	})
}

// paymentCallback is the gateway's confirmation webhook. It is unauthenticated
// at the transport level; trust comes from the HMAC signature, verified by the
// orchestrator before any state changes.
type paymentCallbackRequest struct {
	OrderID   string `json:"orderId"`
	PaymentID string `json:"paymentId"`
	Signature string `json:"signature"`
}

func (h *Handler) paymentCallback(w http.ResponseWriter, r *http.Request) {
	var req paymentCallbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.OrderID == "" {
		writeError(w, http.StatusBadRequest, "orderId required")
		return
	}

	c, err := h.checkout.ConfirmPayment(r.Context(), req.OrderID, req.PaymentID, req.Signature)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("cartId")
		e.Str(c.ID)
		e.FieldStart("state")
		e.Str(string(c.State()))
		e.ObjEnd()
	})
}
