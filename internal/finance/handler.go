package finance

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/enzononato/adna-harmony-suite/pkg/logging"
)

// Handler exposes the finance ledgers and the monthly summary over HTTP.
type Handler struct {
	store    *Store
	reporter *Reporter
	logger   *logging.Logger
}

// NewHandler creates a finance handler.
func NewHandler(store *Store, reporter *Reporter, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, reporter: reporter, logger: logger}
}

// Routes mounts the finance endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/income", h.CreateIncome)
	r.Get("/income", h.ListIncome)
	r.Put("/income/{id}", h.UpdateIncome)
	r.Delete("/income/{id}", h.DeleteIncome)
	r.Post("/expenses", h.CreateExpense)
	r.Get("/expenses", h.ListExpenses)
	r.Put("/expenses/{id}", h.UpdateExpense)
	r.Delete("/expenses/{id}", h.DeleteExpense)
	r.Get("/summary", h.Summary)
	return r
}

// CreateIncome handles POST /finance/income.
func (h *Handler) CreateIncome(w http.ResponseWriter, r *http.Request) {
	var req IncomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	e, err := h.store.CreateIncome(r.Context(), &req)
	if err != nil {
		h.writeError(w, "create income", err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// ListIncome handles GET /finance/income?month=YYYY-MM.
func (h *Handler) ListIncome(w http.ResponseWriter, r *http.Request) {
	year, month, ok := h.monthParam(w, r)
	if !ok {
		return
	}
	entries, err := h.store.ListIncome(r.Context(), year, month)
	if err != nil {
		h.writeError(w, "list income", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries, "count": len(entries)})
}

// UpdateIncome handles PUT /finance/income/{id}.
func (h *Handler) UpdateIncome(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req IncomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.store.UpdateIncome(r.Context(), id, &req); err != nil {
		h.writeError(w, "update income", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteIncome handles DELETE /finance/income/{id}.
func (h *Handler) DeleteIncome(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteIncome(r.Context(), id); err != nil {
		h.writeError(w, "delete income", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// CreateExpense handles POST /finance/expenses.
func (h *Handler) CreateExpense(w http.ResponseWriter, r *http.Request) {
	var req ExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	e, err := h.store.CreateExpense(r.Context(), &req)
	if err != nil {
		h.writeError(w, "create expense", err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

// ListExpenses handles GET /finance/expenses?month=YYYY-MM.
func (h *Handler) ListExpenses(w http.ResponseWriter, r *http.Request) {
	year, month, ok := h.monthParam(w, r)
	if !ok {
		return
	}
	entries, err := h.store.ListExpenses(r.Context(), year, month)
	if err != nil {
		h.writeError(w, "list expenses", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries, "count": len(entries)})
}

// UpdateExpense handles PUT /finance/expenses/{id}.
func (h *Handler) UpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req ExpenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.store.UpdateExpense(r.Context(), id, &req); err != nil {
		h.writeError(w, "update expense", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DeleteExpense handles DELETE /finance/expenses/{id}.
func (h *Handler) DeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.DeleteExpense(r.Context(), id); err != nil {
		h.writeError(w, "delete expense", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Summary handles GET /finance/summary?months=N.
func (h *Handler) Summary(w http.ResponseWriter, r *http.Request) {
	months := 6
	if raw := r.URL.Query().Get("months"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > 36 {
			http.Error(w, "months must be between 1 and 36", http.StatusBadRequest)
			return
		}
		months = n
	}

	summaries, err := h.reporter.MonthlySummary(r.Context(), time.Now().UTC(), months)
	if err != nil {
		h.writeError(w, "monthly summary", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"summary": summaries})
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid entry id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) monthParam(w http.ResponseWriter, r *http.Request) (int, time.Month, bool) {
	raw := r.URL.Query().Get("month")
	parts := strings.SplitN(raw, "-", 2)
	if len(parts) != 2 {
		http.Error(w, "month query parameter required, expected YYYY-MM", http.StatusBadRequest)
		return 0, 0, false
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil || year < 1 {
		http.Error(w, "invalid month, expected YYYY-MM", http.StatusBadRequest)
		return 0, 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 1 || m > 12 {
		http.Error(w, "invalid month, expected YYYY-MM", http.StatusBadRequest)
		return 0, 0, false
	}
	return year, time.Month(m), true
}

func (h *Handler) writeError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, ErrEntryNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		h.logger.Error("finance handler: "+action, "error", err)
		http.Error(w, "operation failed", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
