package finance

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// MonthSummary totals one month of the ledgers.
type MonthSummary struct {
	Month        string `json:"month"` // YYYY-MM
	IncomeCents  int64  `json:"income_cents"`
	ExpenseCents int64  `json:"expense_cents"`
	NetCents     int64  `json:"net_cents"`
}

// Reporter runs the read-only summary queries for the financial
// dashboard over the stdlib driver.
type Reporter struct {
	db *sql.DB
}

// NewReporter creates a finance reporter.
func NewReporter(db *sql.DB) *Reporter {
	return &Reporter{db: db}
}

// MonthlySummary returns per-month totals for the last `months` months up
// to and including the month containing `until`. Months without entries
// appear with zero totals so the dashboard chart has no gaps.
func (r *Reporter) MonthlySummary(ctx context.Context, until time.Time, months int) ([]MonthSummary, error) {
	if months <= 0 {
		months = 6
	}

	last := time.Date(until.Year(), until.Month(), 1, 0, 0, 0, 0, time.UTC)
	first := last.AddDate(0, -(months - 1), 0)
	next := last.AddDate(0, 1, 0)

	income, err := r.monthTotals(ctx, `
		SELECT to_char(date_trunc('month', date), 'YYYY-MM'), COALESCE(SUM(value_cents), 0)
		FROM income_entries
		WHERE date >= $1 AND date < $2
		GROUP BY 1`, first, next)
	if err != nil {
		return nil, fmt.Errorf("finance: income totals: %w", err)
	}
	expense, err := r.monthTotals(ctx, `
		SELECT to_char(date_trunc('month', date), 'YYYY-MM'), COALESCE(SUM(value_cents), 0)
		FROM expense_entries
		WHERE date >= $1 AND date < $2
		GROUP BY 1`, first, next)
	if err != nil {
		return nil, fmt.Errorf("finance: expense totals: %w", err)
	}

	summaries := make([]MonthSummary, 0, months)
	for m := first; m.Before(next); m = m.AddDate(0, 1, 0) {
		key := m.Format("2006-01")
		s := MonthSummary{
			Month:        key,
			IncomeCents:  income[key],
			ExpenseCents: expense[key],
		}
		s.NetCents = s.IncomeCents - s.ExpenseCents
		summaries = append(summaries, s)
	}
	return summaries, nil
}

func (r *Reporter) monthTotals(ctx context.Context, query string, first, next time.Time) (map[string]int64, error) {
	rows, err := r.db.QueryContext(ctx, query, first.Format("2006-01-02"), next.Format("2006-01-02"))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[string]int64)
	for rows.Next() {
		var month string
		var cents int64
		if err := rows.Scan(&month, &cents); err != nil {
			return nil, err
		}
		totals[month] = cents
	}
	return totals, rows.Err()
}
