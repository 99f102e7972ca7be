package web

import (
	"encoding/json"
	"net/http"

	"importops/internal/app"
	"importops/internal/logging"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const maxRequestBody = 1 << 20 // 1 MiB; these are small JSON payloads

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc      app.ApplicationService
	router   chi.Router
	validate *validator.Validate
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string) http.Handler {
	h := &Handler{
		svc:      svc,
		validate: validator.New(),
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(CORS(allowedOrigins))
	r.Use(RequestBodyLimit(maxRequestBody))

	r.Get("/api/health", h.health)

	r.Route("/api/ordenes", func(r chi.Router) {
		r.Get("/", h.listOrders)
		r.Post("/", h.createOrder)
		r.Get("/{code}", h.getOrder)
		r.Put("/{code}", h.updateOrder)
		r.Delete("/{code}", h.deleteOrder)
		r.Get("/{code}/pagos", h.listPayments)
		r.Get("/{code}/gastos", h.listOrderExpenses)
		r.Get("/{code}/recepciones", h.listReceptions)
	})

	r.Route("/api/pagos", func(r chi.Router) {
		r.Post("/", h.recordPayment)
		r.Delete("/{code}", h.deletePayment)
	})

	r.Route("/api/gastos", func(r chi.Router) {
		r.Get("/", h.listExpenses)
		r.Post("/", h.recordExpense)
		r.Delete("/{code}", h.deleteExpense)
	})

	r.Route("/api/configuracion/distribucion", func(r chi.Router) {
		r.Get("/", h.listDistributionConfigs)
		r.Put("/", h.setDistributionMethod)
	})

	r.Route("/api/recepciones", func(r chi.Router) {
		r.Post("/", h.createReception)
		r.Get("/{code}", h.getReception)
		r.Put("/{code}", h.updateReception)
		r.Delete("/{code}", h.deleteReception)
	})

	r.Route("/api/reportes", func(r chi.Router) {
		r.Get("/analisis-costos", h.costAnalysis)
		r.Get("/analisis-costos/excel", h.costAnalysisExcel)
		r.Get("/inventario", h.inventorySummary)
	})

	h.router = r
	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// decode unmarshals the request body into v and runs struct validation.
// Returns false after writing the error response when the payload is bad.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	if err := h.validate.Struct(v); err != nil {
		writeError(w, r, "invalid request: "+err.Error(), "VALIDATION_ERROR", http.StatusUnprocessableEntity)
		return false
	}
	return true
}

// serviceError logs unexpected failures and maps domain errors to HTTP codes.
func (h *Handler) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	if !isClientError(err) {
		logging.L().WithFields(map[string]any{
			"request_id": requestIDFromContext(r.Context()),
			"path":       r.URL.Path,
		}).WithError(err).Error("request failed")
	}
	writeServiceError(w, r, err)
}
