package finance

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
)

func TestReporterMonthlySummaryFillsEmptyMonths(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("SELECT to_char\\(date_trunc\\('month', date\\), 'YYYY-MM'\\), COALESCE\\(SUM\\(value_cents\\), 0\\)\\s+FROM income_entries").
		WithArgs("2025-05-01", "2025-08-01").
		WillReturnRows(sqlmock.NewRows([]string{"month", "total"}).
			AddRow("2025-06", int64(250000)).
			AddRow("2025-07", int64(310000)))
	mock.ExpectQuery("FROM expense_entries").
		WithArgs("2025-05-01", "2025-08-01").
		WillReturnRows(sqlmock.NewRows([]string{"month", "total"}).
			AddRow("2025-07", int64(120000)))

	reporter := NewReporter(db)
	until := time.Date(2025, time.July, 20, 0, 0, 0, 0, time.UTC)
	summaries, err := reporter.MonthlySummary(context.Background(), until, 3)
	if err != nil {
		t.Fatalf("MonthlySummary: %v", err)
	}

	if len(summaries) != 3 {
		t.Fatalf("got %d months, want 3", len(summaries))
	}
	if summaries[0].Month != "2025-05" || summaries[0].IncomeCents != 0 || summaries[0].NetCents != 0 {
		t.Fatalf("empty month not zero-filled: %+v", summaries[0])
	}
	if summaries[1].Month != "2025-06" || summaries[1].NetCents != 250000 {
		t.Fatalf("unexpected June summary: %+v", summaries[1])
	}
	if summaries[2].Month != "2025-07" || summaries[2].IncomeCents != 310000 ||
		summaries[2].ExpenseCents != 120000 || summaries[2].NetCents != 190000 {
		t.Fatalf("unexpected July summary: %+v", summaries[2])
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestReporterMonthlySummaryDefaultsWindow(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	defer db.Close()

	mock.ExpectQuery("FROM income_entries").
		WithArgs("2025-02-01", "2025-08-01").
		WillReturnRows(sqlmock.NewRows([]string{"month", "total"}))
	mock.ExpectQuery("FROM expense_entries").
		WithArgs("2025-02-01", "2025-08-01").
		WillReturnRows(sqlmock.NewRows([]string{"month", "total"}))

	reporter := NewReporter(db)
	until := time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC)
	summaries, err := reporter.MonthlySummary(context.Background(), until, 0)
	if err != nil {
		t.Fatalf("MonthlySummary: %v", err)
	}
	if len(summaries) != 6 {
		t.Fatalf("got %d months, want the default 6", len(summaries))
	}
}
