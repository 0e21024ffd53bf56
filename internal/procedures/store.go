package procedures

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

// Store persists the procedure catalog.
type Store struct {
	db DB
}

// NewStore creates a procedure store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

const procedureColumns = `id, name, price_cents, duration_minutes, return_days, created_at`

// Create inserts a procedure.
func (s *Store) Create(ctx context.Context, req *UpsertRequest) (*Procedure, error) {
	p := &Procedure{
		ID:          uuid.New(),
		Name:        req.Name,
		PriceCents:  req.PriceCents,
		DurationMin: req.DurationMin,
		ReturnDays:  req.ReturnDays,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO procedures (id, name, price_cents, duration_minutes, return_days, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.Name, p.PriceCents, p.DurationMin, p.ReturnDays, p.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("procedures: insert: %w", err)
	}
	return p, nil
}

// Update rewrites a procedure's fields.
func (s *Store) Update(ctx context.Context, id uuid.UUID, req *UpsertRequest) (*Procedure, error) {
	tag, err := s.db.Exec(ctx, `
		UPDATE procedures
		SET name = $1, price_cents = $2, duration_minutes = $3, return_days = $4
		WHERE id = $5`,
		req.Name, req.PriceCents, req.DurationMin, req.ReturnDays, id,
	)
	if err != nil {
		return nil, fmt.Errorf("procedures: update: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrProcedureNotFound
	}
	return s.GetByID(ctx, id)
}

// Delete removes a procedure. Appointments keep their join rows via the
// schema's ON DELETE CASCADE on appointment_procedures.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM procedures WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("procedures: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrProcedureNotFound
	}
	return nil
}

// GetByID fetches a single procedure.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*Procedure, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+procedureColumns+` FROM procedures WHERE id = $1`, id)
	p, err := scanProcedure(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrProcedureNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("procedures: get: %w", err)
	}
	return p, nil
}

// GetByIDs fetches the procedures matching the given ids. Missing ids are
// simply absent from the result; callers compare lengths when they need
// every reference resolved.
func (s *Store) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Procedure, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := s.db.Query(ctx, `
		SELECT `+procedureColumns+` FROM procedures WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("procedures: get by ids: %w", err)
	}
	defer rows.Close()
	return scanProcedures(rows)
}

// List returns the whole catalog ordered by name.
func (s *Store) List(ctx context.Context) ([]Procedure, error) {
	rows, err := s.db.Query(ctx, `
		SELECT `+procedureColumns+` FROM procedures ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("procedures: list: %w", err)
	}
	defer rows.Close()
	return scanProcedures(rows)
}

func scanProcedure(row pgx.Row) (*Procedure, error) {
	var p Procedure
	if err := row.Scan(&p.ID, &p.Name, &p.PriceCents, &p.DurationMin, &p.ReturnDays, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func scanProcedures(rows pgx.Rows) ([]Procedure, error) {
	var procs []Procedure
	for rows.Next() {
		var p Procedure
		if err := rows.Scan(&p.ID, &p.Name, &p.PriceCents, &p.DurationMin, &p.ReturnDays, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("procedures: scan: %w", err)
		}
		procs = append(procs, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("procedures: iterate: %w", err)
	}
	return procs, nil
}
