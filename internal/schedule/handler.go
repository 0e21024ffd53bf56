package schedule

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/enzononato/adna-harmony-suite/internal/procedures"
	"github.com/enzononato/adna-harmony-suite/pkg/logging"
)

// Handler exposes the appointment book over HTTP.
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a schedule handler.
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{service: service, logger: logger}
}

// Routes mounts the schedule endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/confirm", h.ConfirmReturn)
	r.Post("/{id}/reject", h.RejectReturn)
	return r
}

// Create handles POST /appointments.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.Book(r.Context(), &req)
	if err != nil {
		h.writeError(w, "book appointment", err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

// List handles GET /appointments?date=YYYY-MM-DD or ?month=YYYY-MM.
// With ?month=...&counts=true only the per-day counts are returned,
// which is what the calendar grid needs for its indicator dots.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	if date := q.Get("date"); date != "" {
		appts, err := h.service.Day(r.Context(), date)
		if err != nil {
			h.writeError(w, "list day", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"appointments": appts, "count": len(appts)})
		return
	}

	monthParam := q.Get("month")
	if monthParam == "" {
		http.Error(w, "date or month query parameter required", http.StatusBadRequest)
		return
	}
	year, month, err := parseMonth(monthParam)
	if err != nil {
		http.Error(w, "invalid month, expected YYYY-MM", http.StatusBadRequest)
		return
	}

	if q.Get("counts") == "true" {
		counts, err := h.service.MonthCounts(r.Context(), year, month)
		if err != nil {
			h.writeError(w, "month counts", err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"counts": counts})
		return
	}

	appts, err := h.service.Month(r.Context(), year, month)
	if err != nil {
		h.writeError(w, "list month", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"appointments": appts, "count": len(appts)})
}

// Get handles GET /appointments/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	appt, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, "get appointment", err)
		return
	}
	writeJSON(w, http.StatusOK, appt)
}

// Update handles PUT /appointments/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var u AppointmentUpdate
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.service.Update(r.Context(), id, &u)
	if err != nil {
		h.writeError(w, "update appointment", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// Delete handles DELETE /appointments/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		h.writeError(w, "delete appointment", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ConfirmReturn handles POST /appointments/{id}/confirm.
func (h *Handler) ConfirmReturn(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	result, err := h.service.ConfirmReturn(r.Context(), id)
	if err != nil {
		h.writeError(w, "confirm return", err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// RejectReturn handles POST /appointments/{id}/reject.
func (h *Handler) RejectReturn(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.service.RejectReturn(r.Context(), id); err != nil {
		h.writeError(w, "reject return", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid appointment id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) writeError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, ErrMissingPatient),
		errors.Is(err, ErrMissingProcedure),
		errors.Is(err, ErrInvalidDate),
		errors.Is(err, ErrInvalidTime),
		errors.Is(err, ErrInvalidDuration),
		errors.Is(err, procedures.ErrProcedureNotFound):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrConflict):
		http.Error(w, "scheduling conflict, choose another time", http.StatusConflict)
	case errors.Is(err, ErrNotPendingReturn):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, ErrAppointmentNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		h.logger.Error("schedule handler: "+action, "error", err)
		http.Error(w, "operation failed", http.StatusInternalServerError)
	}
}

func parseMonth(raw string) (int, time.Month, error) {
	parts := strings.SplitN(raw, "-", 2)
	if len(parts) != 2 {
		return 0, 0, ErrInvalidDate
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil || year < 1 {
		return 0, 0, ErrInvalidDate
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 1 || m > 12 {
		return 0, 0, ErrInvalidDate
	}
	return year, time.Month(m), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
