package handler

import (
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/oakrise/shopcart/internal/checkout"
	"github.com/oakrise/shopcart/internal/domain/account"
	"github.com/oakrise/shopcart/internal/domain/cart"
	"github.com/oakrise/shopcart/internal/domain/catalog"
	"github.com/oakrise/shopcart/internal/domain/coupon"
)

// writeJSON encodes a response body with jx and writes it with the status.
func writeJSON(w http.ResponseWriter, status int, encode func(e *jx.Encoder)) {
	e := &jx.Encoder{}
	encode(e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// writeError writes the error envelope shared by all endpoints.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("code")
		e.Int(status)
		e.FieldStart("message")
		e.Str(message)
		e.ObjEnd()
	})
}

// respondError maps domain errors onto the HTTP error taxonomy:
// missing entities 404, invalid state 409, policy violations 422,
// gateway failures 502. Anything unmapped is a 500 and gets logged.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, catalog.ErrProductNotFound),
		errors.Is(err, catalog.ErrVariantNotFound),
		errors.Is(err, coupon.ErrNotFound),
		errors.Is(err, cart.ErrNotFound),
		errors.Is(err, account.ErrInvalidToken):
		writeError(w, http.StatusNotFound, err.Error())

	case errors.Is(err, cart.ErrAlreadyPaid),
		errors.Is(err, coupon.ErrAlreadyApplied),
		errors.Is(err, account.ErrEmailTaken):
		writeError(w, http.StatusConflict, err.Error())

	case errors.Is(err, coupon.ErrBelowMinimum),
		errors.Is(err, coupon.ErrExpired):
		writeError(w, http.StatusUnprocessableEntity, err.Error())

	case errors.Is(err, checkout.ErrBadSignature):
		writeError(w, http.StatusBadRequest, err.Error())

	default:
		var gwErr *checkout.GatewayError
		if errors.As(err, &gwErr) {
			zctx.From(r.Context()).Warn("Gateway call failed", zap.Error(err))
			writeError(w, http.StatusBadGateway, "payment gateway unavailable")
			return
		}

		zctx.From(r.Context()).Error("Unhandled error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}
