package schedule

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
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store provides transactional CRUD over appointments and their procedure
// join rows. Every multi-step mutation runs in a single transaction, and
// the no-overlap invariant is re-checked inside that transaction against
// the locked rows of the target day.
type Store struct {
	db DB
}

// NewStore creates an appointment store.
func NewStore(db DB) *Store {
	return &Store{db: db}
}

const appointmentColumns = `
		a.id, a.patient_id, a.patient_name,
		to_char(a.date, 'YYYY-MM-DD'), to_char(a.start_time, 'HH24:MI'),
		a.duration_minutes, a.notes, a.status, a.origin_appointment_id,
		a.created_at, a.updated_at,
		COALESCE(array_agg(ap.procedure_id) FILTER (WHERE ap.procedure_id IS NOT NULL), '{}')`

const appointmentFrom = `
	FROM appointments a
	LEFT JOIN appointment_procedures ap ON ap.appointment_id = a.id`

// Create inserts an appointment and its join rows atomically. When the
// slot conflicts with the day's bookings the insert is refused with
// ErrConflict unless allowConflict is set (automatic returns), in which
// case the row is written anyway and the conflict reported to the caller.
func (s *Store) Create(ctx context.Context, a *Appointment, allowConflict bool) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("schedule: begin create: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	day, err := lockDay(ctx, tx, a.Date)
	if err != nil {
		return false, err
	}
	conflicted := HasConflict(a.Date, a.StartTime, a.DurationMin, day, uuid.Nil)
	if conflicted && !allowConflict {
		return true, ErrConflict
	}

	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.Status == "" {
		a.Status = StatusNormal
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err = tx.Exec(ctx, `
		INSERT INTO appointments (id, patient_id, patient_name, date, start_time, duration_minutes, notes, status, origin_appointment_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.PatientID, a.PatientName, a.Date, a.StartTime, a.DurationMin,
		a.Notes, string(a.Status), a.OriginID, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		return conflicted, fmt.Errorf("schedule: insert appointment: %w", err)
	}

	if err := insertJoins(ctx, tx, a.ID, a.ProcedureIDs); err != nil {
		return conflicted, err
	}

	if err := tx.Commit(ctx); err != nil {
		return conflicted, fmt.Errorf("schedule: commit create: %w", err)
	}
	return conflicted, nil
}

// Update edits an appointment atomically. When procedure IDs are supplied
// the join rows are replaced wholesale. The conflict check runs against
// the appointment's (possibly new) day, excluding the row itself.
func (s *Store) Update(ctx context.Context, id uuid.UUID, u *AppointmentUpdate, allowConflict bool) (*Appointment, bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("schedule: begin update: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	current, err := getByID(ctx, tx, id)
	if err != nil {
		return nil, false, err
	}

	edited := *current
	edited.ProcedureIDs = append([]uuid.UUID(nil), current.ProcedureIDs...)
	u.apply(&edited)

	day, err := lockDay(ctx, tx, edited.Date)
	if err != nil {
		return nil, false, err
	}
	conflicted := HasConflict(edited.Date, edited.StartTime, edited.DurationMin, day, id)
	if conflicted && !allowConflict {
		return nil, true, ErrConflict
	}

	edited.UpdatedAt = time.Now().UTC()
	_, err = tx.Exec(ctx, `
		UPDATE appointments
		SET patient_id = $1, patient_name = $2, date = $3, start_time = $4, duration_minutes = $5, notes = $6, updated_at = $7
		WHERE id = $8`,
		edited.PatientID, edited.PatientName, edited.Date, edited.StartTime,
		edited.DurationMin, edited.Notes, edited.UpdatedAt, id,
	)
	if err != nil {
		return nil, conflicted, fmt.Errorf("schedule: update appointment: %w", err)
	}

	if u.ProcedureIDs != nil {
		if _, err := tx.Exec(ctx, `DELETE FROM appointment_procedures WHERE appointment_id = $1`, id); err != nil {
			return nil, conflicted, fmt.Errorf("schedule: clear joins: %w", err)
		}
		if err := insertJoins(ctx, tx, id, u.ProcedureIDs); err != nil {
			return nil, conflicted, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, conflicted, fmt.Errorf("schedule: commit update: %w", err)
	}
	return &edited, conflicted, nil
}

// Delete removes an appointment together with the treatment-history rows
// mirrored from it: same patient, same date, same procedure names. Join
// rows go with the appointment via ON DELETE CASCADE.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("schedule: begin delete: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	a, err := getByID(ctx, tx, id)
	if err != nil {
		return err
	}

	if len(a.ProcedureIDs) > 0 {
		_, err = tx.Exec(ctx, `
			DELETE FROM treatment_history
			WHERE patient_id = $1 AND date = $2
			  AND procedure IN (SELECT name FROM procedures WHERE id = ANY($3))`,
			a.PatientID, a.Date, a.ProcedureIDs,
		)
		if err != nil {
			return fmt.Errorf("schedule: delete mirrored history: %w", err)
		}
	}

	tag, err := tx.Exec(ctx, `DELETE FROM appointments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("schedule: delete appointment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("schedule: commit delete: %w", err)
	}
	return nil
}

// GetByID fetches a single appointment with its procedure set.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return getByID(ctx, s.db, id)
}

// ListForDay returns the appointments of one calendar day ordered by
// start time. This is the set the day panel renders.
func (s *Store) ListForDay(ctx context.Context, date string) ([]Appointment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT`+appointmentColumns+appointmentFrom+`
		WHERE a.date = $1
		GROUP BY a.id
		ORDER BY a.start_time`, date)
	if err != nil {
		return nil, fmt.Errorf("schedule: list for day: %w", err)
	}
	defer rows.Close()
	return scanAppointments(rows)
}

// ListForMonth returns the appointments of one calendar month.
func (s *Store) ListForMonth(ctx context.Context, year int, month time.Month) ([]Appointment, error) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)
	rows, err := s.db.Query(ctx, `
		SELECT`+appointmentColumns+appointmentFrom+`
		WHERE a.date >= $1 AND a.date < $2
		GROUP BY a.id
		ORDER BY a.date, a.start_time`,
		first.Format(dateLayout), next.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("schedule: list for month: %w", err)
	}
	defer rows.Close()
	return scanAppointments(rows)
}

// DayCounts returns, for one month, how many appointments each day holds.
// It backs the calendar's per-day indicator dots.
func (s *Store) DayCounts(ctx context.Context, year int, month time.Month) (map[string]int, error) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	next := first.AddDate(0, 1, 0)
	rows, err := s.db.Query(ctx, `
		SELECT to_char(date, 'YYYY-MM-DD'), COUNT(*)
		FROM appointments
		WHERE date >= $1 AND date < $2
		GROUP BY date`,
		first.Format(dateLayout), next.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("schedule: day counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var day string
		var n int
		if err := rows.Scan(&day, &n); err != nil {
			return nil, fmt.Errorf("schedule: scan day count: %w", err)
		}
		counts[day] = n
	}
	return counts, rows.Err()
}

// ListDependents returns the pending returns spawned by an appointment.
func (s *Store) ListDependents(ctx context.Context, originID uuid.UUID) ([]Appointment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT`+appointmentColumns+appointmentFrom+`
		WHERE a.origin_appointment_id = $1 AND a.status = 'pending_return'
		GROUP BY a.id
		ORDER BY a.date`, originID)
	if err != nil {
		return nil, fmt.Errorf("schedule: list dependents: %w", err)
	}
	defer rows.Close()
	return scanAppointments(rows)
}

// MarkConfirmed transitions a pending return to confirmed. The guard on
// status makes the transition idempotent-safe: a second confirm reports
// ErrNotPendingReturn instead of silently rewriting.
func (s *Store) MarkConfirmed(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE appointments SET status = 'confirmed_return', updated_at = $1
		WHERE id = $2 AND status = 'pending_return'`,
		time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("schedule: mark confirmed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotPendingReturn
	}
	return nil
}

// DeletePendingReturn removes a rejected automatic return. Ordinary
// appointments and confirmed returns are refused.
func (s *Store) DeletePendingReturn(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `
		DELETE FROM appointments WHERE id = $1 AND status = 'pending_return'`, id)
	if err != nil {
		return fmt.Errorf("schedule: delete pending return: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotPendingReturn
	}
	return nil
}

// querier is the subset shared by DB and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func getByID(ctx context.Context, q querier, id uuid.UUID) (*Appointment, error) {
	rows, err := q.Query(ctx, `
		SELECT`+appointmentColumns+appointmentFrom+`
		WHERE a.id = $1
		GROUP BY a.id`, id)
	if err != nil {
		return nil, fmt.Errorf("schedule: get appointment: %w", err)
	}
	defer rows.Close()

	appts, err := scanAppointments(rows)
	if err != nil {
		return nil, err
	}
	if len(appts) == 0 {
		return nil, ErrAppointmentNotFound
	}
	return &appts[0], nil
}

// lockDay loads and row-locks the slots of one calendar day so concurrent
// writers serialize on the conflict check.
func lockDay(ctx context.Context, q querier, date string) ([]Appointment, error) {
	rows, err := q.Query(ctx, `
		SELECT id, to_char(start_time, 'HH24:MI'), duration_minutes
		FROM appointments
		WHERE date = $1
		FOR UPDATE`, date)
	if err != nil {
		return nil, fmt.Errorf("schedule: lock day: %w", err)
	}
	defer rows.Close()

	var day []Appointment
	for rows.Next() {
		a := Appointment{Date: date}
		if err := rows.Scan(&a.ID, &a.StartTime, &a.DurationMin); err != nil {
			return nil, fmt.Errorf("schedule: scan day slot: %w", err)
		}
		day = append(day, a)
	}
	return day, rows.Err()
}

func insertJoins(ctx context.Context, q querier, appointmentID uuid.UUID, procedureIDs []uuid.UUID) error {
	for _, pid := range procedureIDs {
		_, err := q.Exec(ctx, `
			INSERT INTO appointment_procedures (appointment_id, procedure_id)
			VALUES ($1, $2)`, appointmentID, pid)
		if err != nil {
			return fmt.Errorf("schedule: insert join row: %w", err)
		}
	}
	return nil
}

func scanAppointments(rows pgx.Rows) ([]Appointment, error) {
	var appts []Appointment
	for rows.Next() {
		var a Appointment
		var status string
		if err := rows.Scan(
			&a.ID, &a.PatientID, &a.PatientName,
			&a.Date, &a.StartTime,
			&a.DurationMin, &a.Notes, &status, &a.OriginID,
			&a.CreatedAt, &a.UpdatedAt,
			&a.ProcedureIDs,
		); err != nil {
			return nil, fmt.Errorf("schedule: scan appointment: %w", err)
		}
		a.Status = ReturnStatus(status)
		appts = append(appts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("schedule: iterate appointments: %w", err)
	}
	return appts, nil
}
