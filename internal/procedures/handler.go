package procedures

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/enzononato/adna-harmony-suite/pkg/logging"
)

// Handler exposes the procedure catalog over HTTP.
type Handler struct {
	store  *Store
	logger *logging.Logger
}

// NewHandler creates a procedures handler.
func NewHandler(store *Store, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, logger: logger}
}

// Routes mounts the catalog endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	return r
}

// Create handles POST /procedures.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := h.store.Create(r.Context(), &req)
	if err != nil {
		h.writeError(w, "create procedure", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// List handles GET /procedures.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	procs, err := h.store.List(r.Context())
	if err != nil {
		h.writeError(w, "list procedures", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"procedures": procs, "count": len(procs)})
}

// Get handles GET /procedures/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	p, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, "get procedure", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Update handles PUT /procedures/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	var req UpsertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	p, err := h.store.Update(r.Context(), id, &req)
	if err != nil {
		h.writeError(w, "update procedure", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Delete handles DELETE /procedures/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r)
	if !ok {
		return
	}
	if err := h.store.Delete(r.Context(), id); err != nil {
		h.writeError(w, "delete procedure", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid procedure id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) writeError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, ErrProcedureNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	default:
		h.logger.Error("procedures handler: "+action, "error", err)
		http.Error(w, "operation failed", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
