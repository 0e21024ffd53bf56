package history

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"

	"github.com/enzononato/adna-harmony-suite/pkg/logging"
)

func newMockStore(t *testing.T) (*Store, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to create pgx mock: %v", err)
	}
	t.Cleanup(mock.Close)
	return NewStore(mock), mock
}

func TestStoreSyncPastReportsInsertedRows(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO treatment_history").
		WithArgs("2025-07-10").
		WillReturnResult(pgxmock.NewResult("INSERT", 3))

	inserted, err := store.SyncPast(context.Background(), "2025-07-10")
	if err != nil {
		t.Fatalf("SyncPast: %v", err)
	}
	if inserted != 3 {
		t.Fatalf("inserted = %d, want 3", inserted)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestStoreSyncPastIdempotentRerun(t *testing.T) {
	store, mock := newMockStore(t)

	// The unique key absorbs the rerun; nothing new comes back.
	mock.ExpectExec("INSERT INTO treatment_history").
		WithArgs("2025-07-10").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	inserted, err := store.SyncPast(context.Background(), "2025-07-10")
	if err != nil {
		t.Fatalf("SyncPast: %v", err)
	}
	if inserted != 0 {
		t.Fatalf("inserted = %d, want 0", inserted)
	}
}

func TestStoreListByPatient(t *testing.T) {
	store, mock := newMockStore(t)

	patientID := uuid.New()
	now := time.Now().UTC()
	rows := pgxmock.NewRows([]string{"id", "patient_id", "procedure", "date", "notes", "created_at"}).
		AddRow(uuid.New(), patientID, "Limpeza de Pele", "2025-06-10", "", now).
		AddRow(uuid.New(), patientID, "Avaliação", "2025-05-02", "primeira consulta", now)
	mock.ExpectQuery("SELECT id, patient_id").WithArgs(patientID).WillReturnRows(rows)

	entries, err := store.ListByPatient(context.Background(), patientID)
	if err != nil {
		t.Fatalf("ListByPatient: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("got %d entries, want 2", len(entries))
	}
	if entries[0].Procedure != "Limpeza de Pele" || entries[0].Date != "2025-06-10" {
		t.Fatalf("unexpected entry: %+v", entries[0])
	}
}

func TestSyncerSyncOnce(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("INSERT INTO treatment_history").
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 2))

	syncer := NewSyncer(store, nil, logging.NewWithWriter("error", io.Discard))
	inserted, err := syncer.SyncOnce(context.Background())
	if err != nil {
		t.Fatalf("SyncOnce: %v", err)
	}
	if inserted != 2 {
		t.Fatalf("inserted = %d, want 2", inserted)
	}
}
