package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-faster/jx"
)

type registerRequest struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Email == "" {
		writeError(w, http.StatusBadRequest, "email required")
		return
	}

	u, err := h.accounts.Register(r.Context(), req.Email, req.Name)
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("id")
		e.Str(u.ID)
		e.FieldStart("email")
		e.Str(u.Email)
		e.ObjEnd()
	})
}

func (h *Handler) activate(w http.ResponseWriter, r *http.Request) {
	u, err := h.accounts.Activate(r.Context(), r.PathValue("token"))
	if err != nil {
		respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, func(e *jx.Encoder) {
		e.ObjStart()
		e.FieldStart("id")
		e.Str(u.ID)
		e.FieldStart("mailVerified")
		e.Bool(u.MailVerified)
		e.ObjEnd()
	})
}
