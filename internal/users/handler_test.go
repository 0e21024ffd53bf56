package users

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/enzononato/adna-harmony-suite/pkg/logging"
)

func newTestHandler(t *testing.T) (*Handler, pgxmock.PgxPoolIface) {
	t.Helper()
	store, mock := newMockStore(t)
	return NewHandler(store, newAuthenticator(store), logging.NewWithWriter("error", io.Discard)), mock
}

func TestHandlerLogin(t *testing.T) {
	h, mock := newTestHandler(t)

	u := &User{
		ID:           uuid.New(),
		Email:        "dra.adna@clinic.example",
		Role:         RoleAdmin,
		PasswordHash: hashOf(t, "correct horse"),
		CreatedAt:    time.Now().UTC(),
	}
	mock.ExpectQuery("SELECT id, email").WithArgs(u.Email).WillReturnRows(userRow(u))

	body, _ := json.Marshal(LoginRequest{Email: u.Email, Password: "correct horse"})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.LoginRoutes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Token string `json:"token"`
		User  User   `json:"user"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Token == "" || payload.User.Email != u.Email {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestHandlerLoginBadCredentialsReturns401(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectQuery("SELECT id, email").
		WithArgs("ghost@clinic.example").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "role", "password_hash", "created_at"}))

	body, _ := json.Marshal(LoginRequest{Email: "ghost@clinic.example", Password: "whatever"})
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.LoginRoutes().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestHandlerCreateUser(t *testing.T) {
	h, mock := newTestHandler(t)

	mock.ExpectExec("INSERT INTO users").
		WithArgs(pgxmock.AnyArg(), "recepcao@clinic.example", "receptionist", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	body, _ := json.Marshal(CreateRequest{Email: "Recepcao@clinic.example", Password: "longenough"})
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.AdminRoutes().ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var u User
	if err := json.Unmarshal(rec.Body.Bytes(), &u); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if u.Role != RoleReceptionist {
		t.Fatalf("role = %s, want receptionist", u.Role)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestHandlerDeleteRejectsSelf(t *testing.T) {
	h, _ := newTestHandler(t)

	id := uuid.New()
	claims := &Claims{Role: RoleAdmin}
	claims.Subject = id.String()

	req := httptest.NewRequest(http.MethodDelete, "/"+id.String(), nil)
	req = req.WithContext(context.WithValue(req.Context(), ActorKey, claims))
	rec := httptest.NewRecorder()
	h.AdminRoutes().ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403: %s", rec.Code, rec.Body.String())
	}
}

func TestHandlerDeleteOtherUser(t *testing.T) {
	h, mock := newTestHandler(t)

	target := uuid.New()
	mock.ExpectExec("DELETE FROM users").
		WithArgs(target).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	claims := &Claims{Role: RoleAdmin}
	claims.Subject = uuid.New().String()

	req := httptest.NewRequest(http.MethodDelete, "/"+target.String(), nil)
	req = req.WithContext(context.WithValue(req.Context(), ActorKey, claims))
	rec := httptest.NewRecorder()
	h.AdminRoutes().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204: %s", rec.Code, rec.Body.String())
	}
}
