package web

import (
	"fmt"
	"net/http"
	"time"

	"importops/internal/excel"
	"importops/internal/logging"
)

func (h *Handler) costAnalysis(w http.ResponseWriter, r *http.Request) {
	var orderCode *string
	if code := r.URL.Query().Get("orden"); code != "" {
		orderCode = &code
	}

	report, err := h.svc.CostAnalysis(r.Context(), orderCode)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, report)
}

func (h *Handler) costAnalysisExcel(w http.ResponseWriter, r *http.Request) {
	var orderCode *string
	if code := r.URL.Query().Get("orden"); code != "" {
		orderCode = &code
	}

	report, err := h.svc.CostAnalysis(r.Context(), orderCode)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}

	f, err := excel.CostAnalysisWorkbook(report)
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	defer f.Close()

	filename := fmt.Sprintf("analisis-costos-%s.xlsx", time.Now().Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if err := f.Write(w); err != nil {
		// Headers are already out; all we can do is log.
		logging.L().WithError(err).Error("stream cost analysis workbook")
	}
}

func (h *Handler) inventorySummary(w http.ResponseWriter, r *http.Request) {
	rows, err := h.svc.InventorySummary(r.Context())
	if err != nil {
		h.serviceError(w, r, err)
		return
	}
	writeJSON(w, rows)
}
