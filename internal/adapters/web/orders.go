package web

import (
	"net/http"

	"importops/internal/app"

	"github.com/go-chi/chi/v5"
)

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListOrders(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, orders)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req app.OrderRequest
	if !h.decode(w, r, &req) {
		return
	}
	order, err := h.svc.CreateOrder(r.Context(), req)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSONBody(w, order)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	order, err := h.svc.GetOrder(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, order)
}

func (h *Handler) updateOrder(w http.ResponseWriter, r *http.Request) {
	var req app.OrderRequest
	if !h.decode(w, r, &req) {
		return
	}
	order, err := h.svc.UpdateOrder(r.Context(), chi.URLParam(r, "code"), req)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, order)
}

func (h *Handler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteOrder(r.Context(), chi.URLParam(r, "code")); err != nil {
		h.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
