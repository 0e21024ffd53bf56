package history

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/enzononato/adna-harmony-suite/pkg/logging"
)

// Handler exposes the treatment history over HTTP.
type Handler struct {
	store  *Store
	syncer *Syncer
	logger *logging.Logger
}

// NewHandler creates a history handler.
func NewHandler(store *Store, syncer *Syncer, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, syncer: syncer, logger: logger}
}

// Routes mounts the history endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/patients/{patientID}", h.ListByPatient)
	r.Post("/sync", h.Sync)
	return r
}

// ListByPatient handles GET /history/patients/{patientID}.
func (h *Handler) ListByPatient(w http.ResponseWriter, r *http.Request) {
	patientID, err := uuid.Parse(chi.URLParam(r, "patientID"))
	if err != nil {
		http.Error(w, "invalid patient id", http.StatusBadRequest)
		return
	}

	entries, err := h.store.ListByPatient(r.Context(), patientID)
	if err != nil {
		h.logger.Error("history handler: list by patient", "error", err)
		http.Error(w, "operation failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"entries": entries, "count": len(entries)})
}

// Sync handles POST /history/sync, forcing a sync pass outside the
// ticker schedule.
func (h *Handler) Sync(w http.ResponseWriter, r *http.Request) {
	inserted, err := h.syncer.SyncOnce(r.Context())
	if err != nil {
		h.logger.Error("history handler: sync", "error", err)
		http.Error(w, "operation failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"new_entries": inserted})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
