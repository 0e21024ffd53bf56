package schedule

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/enzononato/adna-harmony-suite/internal/procedures"
	"github.com/enzononato/adna-harmony-suite/pkg/logging"
)

func newTestHandler(t *testing.T, catalog *fakeCatalog) (*Handler, pgxmock.PgxPoolIface) {
	t.Helper()
	svc, mock := newTestService(t, catalog)
	return NewHandler(svc, logging.NewWithWriter("error", io.Discard)), mock
}

func TestHandlerCreateBooksAppointment(t *testing.T) {
	procID := uuid.New()
	catalog := &fakeCatalog{procs: map[uuid.UUID]procedures.Procedure{
		procID: {ID: procID, Name: "Avaliação"},
	}}
	h, mock := newTestHandler(t, catalog)

	mock.ExpectBegin()
	expectInsertAppointment(mock, "2025-07-10", []uuid.UUID{procID})
	mock.ExpectCommit()

	body, _ := json.Marshal(map[string]any{
		"patient_id":    uuid.New(),
		"patient_name":  "Ana Paula Souza",
		"procedure_ids": []uuid.UUID{procID},
		"date":          "2025-07-10",
		"start_time":    "09:00",
	})
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var result BookingResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Appointment == nil || result.Appointment.Date != "2025-07-10" {
		t.Fatalf("unexpected appointment: %+v", result.Appointment)
	}
}

func TestHandlerCreateRejectsMalformedBody(t *testing.T) {
	h, _ := newTestHandler(t, &fakeCatalog{})

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerCreateMapsConflictTo409(t *testing.T) {
	procID := uuid.New()
	catalog := &fakeCatalog{procs: map[uuid.UUID]procedures.Procedure{
		procID: {ID: procID, Name: "Limpeza de Pele"},
	}}
	h, mock := newTestHandler(t, catalog)

	day := emptyDayRows().AddRow(uuid.New(), "09:00", intPtr(60))
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT id, to_char").WithArgs("2025-07-10").WillReturnRows(day)
	mock.ExpectRollback()

	body, _ := json.Marshal(map[string]any{
		"patient_id":       uuid.New(),
		"patient_name":     "Carla Mendes",
		"procedure_ids":    []uuid.UUID{procID},
		"date":             "2025-07-10",
		"start_time":       "09:30",
		"duration_minutes": 30,
	})
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409: %s", rec.Code, rec.Body.String())
	}
}

func TestHandlerCreateMapsValidationTo400(t *testing.T) {
	h, _ := newTestHandler(t, &fakeCatalog{})

	body, _ := json.Marshal(map[string]any{
		"patient_name":  "Ana Paula Souza",
		"procedure_ids": []uuid.UUID{uuid.New()},
		"date":          "2025-07-10",
		"start_time":    "09:00",
	})
	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
	}
}

func TestHandlerListRequiresDateOrMonth(t *testing.T) {
	h, _ := newTestHandler(t, &fakeCatalog{})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerListDay(t *testing.T) {
	procID := uuid.New()
	h, mock := newTestHandler(t, &fakeCatalog{procs: map[uuid.UUID]procedures.Procedure{
		procID: {ID: procID, Name: "Avaliação"},
	}})

	appt := &Appointment{
		ID:           uuid.New(),
		PatientID:    uuid.New(),
		PatientName:  "Ana Paula Souza",
		ProcedureIDs: []uuid.UUID{procID},
		Date:         "2025-07-10",
		StartTime:    "09:00",
		Status:       StatusNormal,
	}
	mock.ExpectQuery("SELECT").WithArgs("2025-07-10").WillReturnRows(appointmentRows(appt))

	req := httptest.NewRequest(http.MethodGet, "/?date=2025-07-10", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Appointments []Appointment `json:"appointments"`
		Count        int           `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Count != 1 || len(payload.Appointments) != 1 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if payload.Appointments[0].PatientName != "Ana Paula Souza" {
		t.Fatalf("unexpected appointment: %+v", payload.Appointments[0])
	}
}

func TestHandlerListMonthCounts(t *testing.T) {
	h, mock := newTestHandler(t, &fakeCatalog{})

	rows := pgxmock.NewRows([]string{"day", "count"}).AddRow("2025-07-15", 2)
	mock.ExpectQuery("SELECT to_char").
		WithArgs("2025-07-01", "2025-08-01").
		WillReturnRows(rows)

	req := httptest.NewRequest(http.MethodGet, "/?month=2025-07&counts=true", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Counts map[string]int `json:"counts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Counts["2025-07-15"] != 2 {
		t.Fatalf("unexpected counts: %v", payload.Counts)
	}
}

func TestHandlerListRejectsBadMonth(t *testing.T) {
	h, _ := newTestHandler(t, &fakeCatalog{})

	for _, month := range []string{"2025", "2025-13", "abcd-01"} {
		req := httptest.NewRequest(http.MethodGet, "/?month="+month, nil)
		rec := httptest.NewRecorder()
		h.Routes().ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("month %q: status = %d, want 400", month, rec.Code)
		}
	}
}

func TestHandlerGetUnknownIDReturns404(t *testing.T) {
	h, mock := newTestHandler(t, &fakeCatalog{})

	id := uuid.New()
	mock.ExpectQuery("SELECT").WithArgs(id).WillReturnRows(pgxmock.NewRows([]string{
		"id", "patient_id", "patient_name", "date", "start_time",
		"duration_minutes", "notes", "status", "origin_appointment_id",
		"created_at", "updated_at", "procedure_ids",
	}))

	req := httptest.NewRequest(http.MethodGet, "/"+id.String(), nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestHandlerGetRejectsMalformedID(t *testing.T) {
	h, _ := newTestHandler(t, &fakeCatalog{})

	req := httptest.NewRequest(http.MethodGet, "/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandlerConfirmNonPendingReturns409(t *testing.T) {
	procID := uuid.New()
	h, mock := newTestHandler(t, &fakeCatalog{procs: map[uuid.UUID]procedures.Procedure{
		procID: {ID: procID, Name: "Avaliação"},
	}})

	appt := &Appointment{
		ID:           uuid.New(),
		PatientID:    uuid.New(),
		PatientName:  "Juliana Costa",
		ProcedureIDs: []uuid.UUID{procID},
		Date:         "2025-07-10",
		StartTime:    "09:00",
		Status:       StatusNormal,
	}
	mock.ExpectQuery("SELECT").WithArgs(appt.ID).WillReturnRows(appointmentRows(appt))
	mock.ExpectExec("UPDATE appointments SET status").
		WithArgs(pgxmock.AnyArg(), appt.ID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/%s/confirm", appt.ID), nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409: %s", rec.Code, rec.Body.String())
	}
}

func TestHandlerRejectReturnDeletes(t *testing.T) {
	procID := uuid.New()
	h, mock := newTestHandler(t, &fakeCatalog{procs: map[uuid.UUID]procedures.Procedure{
		procID: {ID: procID, Name: "Avaliação"},
	}})

	originID := uuid.New()
	pending := &Appointment{
		ID:           uuid.New(),
		PatientID:    uuid.New(),
		PatientName:  "Fernanda Lima",
		ProcedureIDs: []uuid.UUID{procID},
		Date:         "2025-07-25",
		StartTime:    "09:00",
		Status:       StatusPendingReturn,
		OriginID:     &originID,
	}
	mock.ExpectQuery("SELECT").WithArgs(pending.ID).WillReturnRows(appointmentRows(pending))
	mock.ExpectExec("DELETE FROM appointments WHERE id").
		WithArgs(pending.ID).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/%s/reject", pending.ID), nil)
	rec := httptest.NewRecorder()
	h.Routes().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204: %s", rec.Code, rec.Body.String())
	}
}
