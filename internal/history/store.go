package history

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB abstracts the pgx pool interface for testing.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store persists treatment-history entries.
type Store struct {
	db DB
}

// NewStore creates a history store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// SyncPast copies every past-dated appointment's procedures into the
// history, one row per (patient, procedure, date). The unique key makes
// the pass idempotent: reruns insert nothing new.
func (s *Store) SyncPast(ctx context.Context, today string) (int, error) {
	tag, err := s.db.Exec(ctx, `
		INSERT INTO treatment_history (id, patient_id, procedure, date, notes, created_at)
		SELECT gen_random_uuid(), a.patient_id, p.name, a.date, a.notes, now()
		FROM appointments a
		JOIN appointment_procedures ap ON ap.appointment_id = a.id
		JOIN procedures p ON p.id = ap.procedure_id
		WHERE a.date < $1
		ON CONFLICT (patient_id, procedure, date) DO NOTHING`, today)
	if err != nil {
		return 0, fmt.Errorf("history: sync past: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// ListByPatient returns a patient's history, newest first.
func (s *Store) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]Entry, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, patient_id, procedure, to_char(date, 'YYYY-MM-DD'), notes, created_at
		FROM treatment_history
		WHERE patient_id = $1
		ORDER BY date DESC, procedure`, patientID)
	if err != nil {
		return nil, fmt.Errorf("history: list by patient: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.PatientID, &e.Procedure, &e.Date, &e.Notes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("history: scan entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate entries: %w", err)
	}
	return entries, nil
}
