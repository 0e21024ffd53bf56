package finance

import (
	"context"
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

// Store persists the income and expense ledgers.
type Store struct {
	db DB
}

// NewStore creates a finance store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

// CreateIncome inserts an income entry.
func (s *Store) CreateIncome(ctx context.Context, req *IncomeRequest) (*IncomeEntry, error) {
	e := &IncomeEntry{
		ID:            uuid.New(),
		PatientName:   req.PatientName,
		Procedure:     req.Procedure,
		ValueCents:    req.ValueCents,
		PaymentMethod: req.PaymentMethod,
		Date:          req.Date,
		Notes:         req.Notes,
		CreatedAt:     time.Now().UTC(),
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO income_entries (id, patient_name, procedure, value_cents, payment_method, date, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.PatientName, e.Procedure, e.ValueCents, e.PaymentMethod, e.Date, e.Notes, e.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("finance: insert income: %w", err)
	}
	return e, nil
}

// UpdateIncome rewrites an income entry.
func (s *Store) UpdateIncome(ctx context.Context, id uuid.UUID, req *IncomeRequest) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE income_entries
		SET patient_name = $1, procedure = $2, value_cents = $3, payment_method = $4, date = $5, notes = $6
		WHERE id = $7`,
		req.PatientName, req.Procedure, req.ValueCents, req.PaymentMethod, req.Date, req.Notes, id,
	)
	if err != nil {
		return fmt.Errorf("finance: update income: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// DeleteIncome removes an income entry.
func (s *Store) DeleteIncome(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM income_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("finance: delete income: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// ListIncome returns the income entries of one month, newest first.
func (s *Store) ListIncome(ctx context.Context, year int, month time.Month) ([]IncomeEntry, error) {
	first, next := monthBounds(year, month)
	rows, err := s.db.Query(ctx, `
		SELECT id, patient_name, procedure, value_cents, payment_method, to_char(date, 'YYYY-MM-DD'), notes, created_at
		FROM income_entries
		WHERE date >= $1 AND date < $2
		ORDER BY date DESC, created_at DESC`, first, next)
	if err != nil {
		return nil, fmt.Errorf("finance: list income: %w", err)
	}
	defer rows.Close()

	var entries []IncomeEntry
	for rows.Next() {
		var e IncomeEntry
		if err := rows.Scan(&e.ID, &e.PatientName, &e.Procedure, &e.ValueCents, &e.PaymentMethod, &e.Date, &e.Notes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("finance: scan income: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("finance: iterate income: %w", err)
	}
	return entries, nil
}

// CreateExpense inserts an expense entry.
func (s *Store) CreateExpense(ctx context.Context, req *ExpenseRequest) (*ExpenseEntry, error) {
	e := &ExpenseEntry{
		ID:          uuid.New(),
		Category:    req.Category,
		Description: req.Description,
		ValueCents:  req.ValueCents,
		Date:        req.Date,
		Notes:       req.Notes,
		CreatedAt:   time.Now().UTC(),
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO expense_entries (id, category, description, value_cents, date, notes, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		e.ID, e.Category, e.Description, e.ValueCents, e.Date, e.Notes, e.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("finance: insert expense: %w", err)
	}
	return e, nil
}

// UpdateExpense rewrites an expense entry.
func (s *Store) UpdateExpense(ctx context.Context, id uuid.UUID, req *ExpenseRequest) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE expense_entries
		SET category = $1, description = $2, value_cents = $3, date = $4, notes = $5
		WHERE id = $6`,
		req.Category, req.Description, req.ValueCents, req.Date, req.Notes, id,
	)
	if err != nil {
		return fmt.Errorf("finance: update expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// DeleteExpense removes an expense entry.
func (s *Store) DeleteExpense(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM expense_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("finance: delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

// ListExpenses returns the expense entries of one month, newest first.
func (s *Store) ListExpenses(ctx context.Context, year int, month time.Month) ([]ExpenseEntry, error) {
	first, next := monthBounds(year, month)
	rows, err := s.db.Query(ctx, `
		SELECT id, category, description, value_cents, to_char(date, 'YYYY-MM-DD'), notes, created_at
		FROM expense_entries
		WHERE date >= $1 AND date < $2
		ORDER BY date DESC, created_at DESC`, first, next)
	if err != nil {
		return nil, fmt.Errorf("finance: list expenses: %w", err)
	}
	defer rows.Close()

	var entries []ExpenseEntry
	for rows.Next() {
		var e ExpenseEntry
		if err := rows.Scan(&e.ID, &e.Category, &e.Description, &e.ValueCents, &e.Date, &e.Notes, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("finance: scan expense: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("finance: iterate expenses: %w", err)
	}
	return entries, nil
}

func monthBounds(year int, month time.Month) (string, string) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return first.Format("2006-01-02"), first.AddDate(0, 1, 0).Format("2006-01-02")
}
