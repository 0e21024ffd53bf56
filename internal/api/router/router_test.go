package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/enzononato/adna-harmony-suite/internal/users"
)

func testRouter(t *testing.T) (http.Handler, *users.Authenticator, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	t.Cleanup(mock.Close)

	store := users.NewStore(mock)
	auth := users.NewAuthenticator(store, "test-secret", time.Hour, nil)
	handler := New(&Config{
		Authenticator: auth,
		UsersHandler:  users.NewHandler(store, auth, nil),
	})
	return handler, auth, mock
}

func tokenFor(t *testing.T, auth *users.Authenticator, mock pgxmock.PgxPoolIface, role users.Role) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("longenough"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	email := string(role) + "@clinic.example"
	rows := pgxmock.NewRows([]string{"id", "email", "role", "password_hash", "created_at"}).
		AddRow(uuid.New(), email, string(role), string(hash), time.Now().UTC())
	mock.ExpectQuery("SELECT id, email").WithArgs(email).WillReturnRows(rows)

	token, _, err := auth.Login(context.Background(), &users.LoginRequest{Email: email, Password: "longenough"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	return token
}

func TestHealthIsPublic(t *testing.T) {
	handler, _, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestResourcesRequireAuth(t *testing.T) {
	handler, _, _ := testRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestAdminRoutesRejectReceptionist(t *testing.T) {
	handler, auth, mock := testRouter(t)
	token := tokenFor(t, auth, mock, users.RoleReceptionist)

	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestAdminRoutesAllowAdmin(t *testing.T) {
	handler, auth, mock := testRouter(t)
	token := tokenFor(t, auth, mock, users.RoleAdmin)

	mock.ExpectQuery("SELECT id, email").
		WillReturnRows(pgxmock.NewRows([]string{"id", "email", "role", "password_hash", "created_at"}))

	req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
}
