package patients

import (
	"context"
	"errors"
	"fmt"
	"time"

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

// Store persists patient records.
type Store struct {
	db DB
}

// NewStore creates a patient store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

const patientColumns = `id, name, phone, email, to_char(birth_date, 'YYYY-MM-DD'), notes, created_at, updated_at`

// Create inserts a patient.
func (s *Store) Create(ctx context.Context, req *UpsertRequest) (*Patient, error) {
	now := time.Now().UTC()
	p := &Patient{
		ID:        uuid.New(),
		Name:      req.Name,
		Phone:     req.Phone,
		Email:     req.Email,
		BirthDate: req.BirthDate,
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO patients (id, name, phone, email, birth_date, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		p.ID, p.Name, p.Phone, p.Email, p.BirthDate, p.Notes, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("patients: insert: %w", err)
	}
	return p, nil
}

// Update rewrites a patient's fields.
func (s *Store) Update(ctx context.Context, id uuid.UUID, req *UpsertRequest) (*Patient, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE patients
		SET name = $1, phone = $2, email = $3, birth_date = $4, notes = $5, updated_at = $6
		WHERE id = $7`,
		req.Name, req.Phone, req.Email, req.BirthDate, req.Notes, time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("patients: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrPatientNotFound
	}
	return s.GetByID(ctx, id)
}

// Delete removes a patient. Appointments, history entries and file
// metadata follow via the schema's ON DELETE CASCADE.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("patients: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPatientNotFound
	}
	return nil
}

// GetByID fetches a single patient.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+patientColumns+` FROM patients WHERE id = $1`, id)
	p, err := scanPatient(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPatientNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("patients: get: %w", err)
	}
	return p, nil
}

// List returns patients ordered by name, optionally filtered by a
// case-insensitive name substring.
func (s *Store) List(ctx context.Context, search string) ([]Patient, error) {
	var (
		rows pgx.Rows
		err  error
	)
	if search != "" {
		rows, err = s.db.Query(ctx, `
			SELECT `+patientColumns+` FROM patients
			WHERE name ILIKE '%' || $1 || '%'
			ORDER BY name`, search)
	} else {
		rows, err = s.db.Query(ctx, `
			SELECT `+patientColumns+` FROM patients ORDER BY name`)
	}
	if err != nil {
		return nil, fmt.Errorf("patients: list: %w", err)
	}
	defer rows.Close()

	var patients []Patient
	for rows.Next() {
		var p Patient
		if err := rows.Scan(&p.ID, &p.Name, &p.Phone, &p.Email, &p.BirthDate, &p.Notes, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("patients: scan: %w", err)
		}
		patients = append(patients, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("patients: iterate: %w", err)
	}
	return patients, nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	if err := row.Scan(&p.ID, &p.Name, &p.Phone, &p.Email, &p.BirthDate, &p.Notes, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}
