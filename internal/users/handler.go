package users

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/enzononato/adna-harmony-suite/pkg/logging"
)

type actorKeyType struct{}

// ActorKey is the context key the auth middleware stores Claims under.
var ActorKey = actorKeyType{}

// ActorFrom returns the claims of the authenticated request, if any.
func ActorFrom(ctx context.Context) (*Claims, bool) {
	claims, ok := ctx.Value(ActorKey).(*Claims)
	return claims, ok
}

// Handler exposes login and admin-gated account management over HTTP.
type Handler struct {
	store  *Store
	auth   *Authenticator
	logger *logging.Logger
}

// NewHandler creates a users handler.
func NewHandler(store *Store, auth *Authenticator, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{store: store, auth: auth, logger: logger}
}

// LoginRoutes mounts the public login endpoint.
func (h *Handler) LoginRoutes() chi.Router {
	r := chi.NewRouter()
	r.Post("/login", h.Login)
	return r
}

// AdminRoutes mounts the account-management endpoints. The router is
// expected to wrap these with the admin-role middleware.
func (h *Handler) AdminRoutes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Delete("/{id}", h.Delete)
	return r
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	token, u, err := h.auth.Login(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			http.Error(w, "invalid credentials", http.StatusUnauthorized)
			return
		}
		h.logger.Error("users handler: login", "error", err)
		http.Error(w, "operation failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"token": token, "user": u})
}

// List handles GET /admin/users.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.List(r.Context())
	if err != nil {
		h.logger.Error("users handler: list", "error", err)
		http.Error(w, "operation failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"users": list, "count": len(list)})
}

// Create handles POST /admin/users.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := req.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	u, err := h.store.Create(r.Context(), &req)
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		h.logger.Error("users handler: create", "error", err)
		http.Error(w, "operation failed", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

// Delete handles DELETE /admin/users/{id}. Admins cannot delete their
// own account, so the clinic can never lock itself out entirely.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, "invalid user id", http.StatusBadRequest)
		return
	}

	if actor, ok := ActorFrom(r.Context()); ok && actor.Subject == id.String() {
		http.Error(w, ErrSelfDelete.Error(), http.StatusForbidden)
		return
	}

	if err := h.store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, ErrUserNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		h.logger.Error("users handler: delete", "error", err)
		http.Error(w, "operation failed", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
