package patients

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/enzononato/adna-harmony-suite/pkg/logging"
)

// Handler exposes patient records and their files over HTTP.
type Handler struct {
	store  *Store
	files  *FileStore
	logger *logging.Logger
}

// NewHandler creates a patients handler.
func NewHandler(store *Store, files *FileStore, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, files: files, logger: logger}
}

// Routes mounts the patient endpoints.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
	r.Post("/{id}/files", h.UploadFile)
	r.Get("/{id}/files", h.ListFiles)
	r.Get("/{id}/files/{fileID}", h.DownloadFile)
	r.Delete("/{id}/files/{fileID}", h.DeleteFile)
	return r
}

// Create handles POST /patients.
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
		h.writeError(w, "create patient", err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// List handles GET /patients?search=name.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.List(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		h.writeError(w, "list patients", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"patients": list, "count": len(list)})
}

// Get handles GET /patients/{id}.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	p, err := h.store.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, "get patient", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Update handles PUT /patients/{id}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
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
		h.writeError(w, "update patient", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Delete handles DELETE /patients/{id}.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	if err := h.store.Delete(r.Context(), id); err != nil {
		h.writeError(w, "delete patient", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UploadFile handles POST /patients/{id}/files.
func (h *Handler) UploadFile(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	var req FileUploadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	upload, err := h.files.CreateUpload(r.Context(), id, &req)
	if err != nil {
		h.writeError(w, "register file", err)
		return
	}
	writeJSON(w, http.StatusCreated, upload)
}

// ListFiles handles GET /patients/{id}/files.
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	files, err := h.files.ListByPatient(r.Context(), id)
	if err != nil {
		h.writeError(w, "list files", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"files": files, "count": len(files)})
}

// DownloadFile handles GET /patients/{id}/files/{fileID}. It returns a
// presigned URL rather than the content itself.
func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	fileID, ok := h.pathID(w, r, "fileID")
	if !ok {
		return
	}

	url, err := h.files.DownloadURL(r.Context(), id, fileID)
	if err != nil {
		h.writeError(w, "presign download", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"download_url": url})
}

// DeleteFile handles DELETE /patients/{id}/files/{fileID}.
func (h *Handler) DeleteFile(w http.ResponseWriter, r *http.Request) {
	id, ok := h.pathID(w, r, "id")
	if !ok {
		return
	}
	fileID, ok := h.pathID(w, r, "fileID")
	if !ok {
		return
	}
	if err := h.files.DeleteFile(r.Context(), id, fileID); err != nil {
		h.writeError(w, "delete file", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, param string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, param))
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) writeError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, ErrInvalidName), errors.Is(err, ErrInvalidBirthDate), errors.Is(err, ErrInvalidFileName):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrPatientNotFound), errors.Is(err, ErrFileNotFound):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, ErrFilesDisabled):
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
	default:
		h.logger.Error("patients handler: "+action, "error", err)
		http.Error(w, "operation failed", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
