package patients

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func strPtr(s string) *string { return &s }

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	t.Cleanup(mock.Close)
	return NewStore(mock), mock
}

func patientRows(ps ...Patient) *pgxmock.Rows {
	rows := pgxmock.NewRows([]string{"id", "name", "phone", "email", "birth_date", "notes", "created_at", "updated_at"})
	for _, p := range ps {
		rows.AddRow(p.ID, p.Name, p.Phone, p.Email, p.BirthDate, p.Notes, p.CreatedAt, p.UpdatedAt)
	}
	return rows
}

func TestStoreCreateInsertsPatient(t *testing.T) {
	store, mock := newMockStore(t)

	req := &UpsertRequest{
		Name:      "Ana Paula Souza",
		Phone:     "+55 11 91234-5678",
		Email:     "ana@example.com",
		BirthDate: strPtr("1990-03-12"),
		Notes:     "alergia a lidocaína",
	}
	mock.ExpectExec("INSERT INTO patients").
		WithArgs(pgxmock.AnyArg(), "Ana Paula Souza", "+55 11 91234-5678", "ana@example.com",
			req.BirthDate, "alergia a lidocaína", pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	p, err := store.Create(context.Background(), req)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.ID == uuid.Nil {
		t.Fatal("store must assign an id")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStoreUpdateUnknownIDReturnsNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	id := uuid.New()
	mock.ExpectExec("UPDATE patients").
		WithArgs("Carla Mendes", "", "", pgxmock.AnyArg(), "", pgxmock.AnyArg(), id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	_, err := store.Update(context.Background(), id, &UpsertRequest{Name: "Carla Mendes"})
	if !errors.Is(err, ErrPatientNotFound) {
		t.Fatalf("expected ErrPatientNotFound, got %v", err)
	}
}

func TestStoreListWithSearch(t *testing.T) {
	store, mock := newMockStore(t)

	now := time.Now().UTC()
	mock.ExpectQuery("SELECT id, name").
		WithArgs("ana").
		WillReturnRows(patientRows(
			Patient{ID: uuid.New(), Name: "Ana Paula Souza", CreatedAt: now, UpdatedAt: now},
		))

	list, err := store.List(context.Background(), "ana")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Ana Paula Souza" {
		t.Fatalf("unexpected result: %+v", list)
	}
}

func TestStoreDeleteUnknownIDReturnsNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	id := uuid.New()
	mock.ExpectExec("DELETE FROM patients").
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := store.Delete(context.Background(), id)
	if !errors.Is(err, ErrPatientNotFound) {
		t.Fatalf("expected ErrPatientNotFound, got %v", err)
	}
}

func TestUpsertRequestValidate(t *testing.T) {
	cases := []struct {
		name string
		req  UpsertRequest
		want error
	}{
		{"valid", UpsertRequest{Name: "Ana Paula Souza"}, nil},
		{"valid with birth date", UpsertRequest{Name: "Ana", BirthDate: strPtr("1990-03-12")}, nil},
		{"blank name", UpsertRequest{Name: "  "}, ErrInvalidName},
		{"bad birth date", UpsertRequest{Name: "Ana", BirthDate: strPtr("12/03/1990")}, ErrInvalidBirthDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.req.Validate(); !errors.Is(err, tc.want) {
				t.Fatalf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}
}
