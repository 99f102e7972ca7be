package web

import (
	"net/http"

	"importops/internal/app"

	"github.com/go-chi/chi/v5"
)

// ── Payments ──────────────────────────────────────────────────────────────────

func (h *Handler) recordPayment(w http.ResponseWriter, r *http.Request) {
	var req app.PaymentRequest
	if !h.decode(w, r, &req) {
		return
	}
	payment, err := h.svc.RecordPayment(r.Context(), req)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSONBody(w, payment)
}

func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.svc.ListPayments(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, payments)
}

func (h *Handler) deletePayment(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeletePayment(r.Context(), chi.URLParam(r, "code")); err != nil {
		h.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Logistics expenses ────────────────────────────────────────────────────────

func (h *Handler) recordExpense(w http.ResponseWriter, r *http.Request) {
	var req app.ExpenseRequest
	if !h.decode(w, r, &req) {
		return
	}
	expense, err := h.svc.RecordExpense(r.Context(), req)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	writeJSONBody(w, expense)
}

func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.svc.ListExpenses(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, expenses)
}

func (h *Handler) listOrderExpenses(w http.ResponseWriter, r *http.Request) {
	expenses, err := h.svc.ListExpensesForOrder(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, expenses)
}

func (h *Handler) deleteExpense(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteExpense(r.Context(), chi.URLParam(r, "code")); err != nil {
		h.serviceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ── Distribution configuration ────────────────────────────────────────────────

func (h *Handler) setDistributionMethod(w http.ResponseWriter, r *http.Request) {
	var req app.DistributionConfigRequest
	if !h.decode(w, r, &req) {
		return
	}
	cfg, err := h.svc.SetDistributionMethod(r.Context(), req)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, cfg)
}

func (h *Handler) listDistributionConfigs(w http.ResponseWriter, r *http.Request) {
	configs, err := h.svc.ListDistributionConfigs(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, configs)
}
