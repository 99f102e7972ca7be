package web

import (
	"net/http"

	"importops/internal/app"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) createReception(w http.ResponseWriter, r *http.Request) {
	var req app.ReceptionRequest
	if !h.decode(w, r, &req) {
		return
	}
	rec, err := h.svc.CreateReception(r.Context(), req)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSONBody(w, rec)
}

func (h *Handler) getReception(w http.ResponseWriter, r *http.Request) {
	rec, err := h.svc.GetReception(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, rec)
}

func (h *Handler) updateReception(w http.ResponseWriter, r *http.Request) {
	var req app.ReceptionRequest
	if !h.decode(w, r, &req) {
		return
	}
	rec, err := h.svc.UpdateReception(r.Context(), chi.URLParam(r, "code"), req)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, rec)
}

func (h *Handler) deleteReception(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteReception(r.Context(), chi.URLParam(r, "code")); err != nil {
		h.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) listReceptions(w http.ResponseWriter, r *http.Request) {
	receptions, err := h.svc.ListReceptions(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, receptions)
}
