package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/enzononato/adna-harmony-suite/internal/observability/metrics"
	"github.com/enzononato/adna-harmony-suite/internal/procedures"
	"github.com/enzononato/adna-harmony-suite/pkg/logging"
)

var scheduleTracer = otel.Tracer("clinic.internal.schedule")

// ProcedureCatalog resolves procedure references on appointments.
type ProcedureCatalog interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]procedures.Procedure, error)
}

// Service orchestrates the appointment book: manual bookings block on
// conflicts, automatic returns are created with a warning instead, and
// edits cascade to still-pending returns.
type Service struct {
	store   *Store
	catalog ProcedureCatalog
	planner *Planner
	cache   *MonthCache
	metrics *metrics.SchedulingMetrics
	logger  *logging.Logger
}

// NewService constructs a scheduling service.
func NewService(store *Store, catalog ProcedureCatalog, planner *Planner, cache *MonthCache, m *metrics.SchedulingMetrics, logger *logging.Logger) *Service {
	if store == nil {
		panic("schedule: store required")
	}
	if catalog == nil {
		panic("schedule: procedure catalog required")
	}
	if planner == nil {
		planner = NewPlanner(time.Sunday)
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{store: store, catalog: catalog, planner: planner, cache: cache, metrics: m, logger: logger}
}

// BookingResult reports a completed write plus any non-blocking warnings.
type BookingResult struct {
	Appointment *Appointment `json:"appointment"`
	// Return is the automatic follow-up spawned by the write, if any.
	Return   *Appointment `json:"return,omitempty"`
	Warnings []string     `json:"warnings,omitempty"`
}

// Book creates a manual appointment. A conflicting slot blocks the
// booking outright. When one of the procedures configures a return
// interval, the pending follow-up is created in the same call.
func (s *Service) Book(ctx context.Context, req *BookingRequest) (*BookingResult, error) {
	ctx, span := scheduleTracer.Start(ctx, "schedule.book")
	defer span.End()
	start := time.Now()
	defer func() { s.metrics.ObserveLatency("create", time.Since(start).Seconds()) }()

	if err := req.Validate(); err != nil {
		return nil, err
	}
	catalog, err := s.resolveProcedures(ctx, req.ProcedureIDs)
	if err != nil {
		return nil, err
	}

	appt := &Appointment{
		ID:           uuid.New(),
		PatientID:    req.PatientID,
		PatientName:  req.PatientName,
		ProcedureIDs: req.ProcedureIDs,
		Date:         req.Date,
		StartTime:    req.StartTime,
		DurationMin:  req.DurationMin,
		Notes:        req.Notes,
		Status:       StatusNormal,
	}
	span.SetAttributes(attribute.String("clinic.appointment_id", appt.ID.String()))

	if _, err := s.store.Create(ctx, appt, false); err != nil {
		if errors.Is(err, ErrConflict) {
			s.metrics.ObserveBooking("create", "conflict")
			return nil, err
		}
		s.metrics.ObserveBooking("create", "error")
		return nil, err
	}
	s.metrics.ObserveBooking("create", "created")
	s.logger.Info("appointment booked", "id", appt.ID, "patient", appt.PatientName, "date", appt.Date, "time", appt.StartTime)

	result := &BookingResult{Appointment: appt}
	s.spawnReturn(ctx, appt, catalog, result)
	s.invalidateMonths(ctx, result)
	return result, nil
}

// Update edits an appointment and propagates compatible changes to its
// pending returns. The primary edit blocks on conflict; dependent updates
// never do, and their individual failures do not fail the edit.
func (s *Service) Update(ctx context.Context, id uuid.UUID, u *AppointmentUpdate) (*BookingResult, error) {
	ctx, span := scheduleTracer.Start(ctx, "schedule.update")
	defer span.End()
	start := time.Now()
	defer func() { s.metrics.ObserveLatency("update", time.Since(start).Seconds()) }()

	if err := u.Validate(); err != nil {
		return nil, err
	}
	if u.ProcedureIDs != nil {
		if _, err := s.resolveProcedures(ctx, u.ProcedureIDs); err != nil {
			return nil, err
		}
	}

	before, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, _, err := s.store.Update(ctx, id, u, false)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			s.metrics.ObserveBooking("update", "conflict")
		} else {
			s.metrics.ObserveBooking("update", "error")
		}
		return nil, err
	}
	s.metrics.ObserveBooking("update", "updated")

	result := &BookingResult{Appointment: updated}
	s.propagate(ctx, updated, u, result)
	s.cache.Invalidate(ctx, before.Date, updated.Date)
	return result, nil
}

// ConfirmReturn acknowledges a pending automatic return and chains the
// next one when the procedure set still configures an interval. The new
// return is created even when it conflicts; the conflict becomes a
// warning for the staff to resolve.
func (s *Service) ConfirmReturn(ctx context.Context, id uuid.UUID) (*BookingResult, error) {
	ctx, span := scheduleTracer.Start(ctx, "schedule.confirm_return")
	defer span.End()
	start := time.Now()
	defer func() { s.metrics.ObserveLatency("confirm", time.Since(start).Seconds()) }()

	appt, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.store.MarkConfirmed(ctx, id); err != nil {
		return nil, err
	}
	appt.Status = StatusConfirmedReturn
	s.metrics.ObserveReturnConfirmed()
	s.logger.Info("return confirmed", "id", id, "patient", appt.PatientName)

	catalog, err := s.resolveProcedures(ctx, appt.ProcedureIDs)
	if err != nil {
		// The confirmation itself stands; only the chained return failed.
		s.logger.Error("confirm: resolve procedures for next return", "id", id, "error", err)
		return &BookingResult{Appointment: appt}, nil
	}

	result := &BookingResult{Appointment: appt}
	s.spawnReturn(ctx, appt, catalog, result)
	s.invalidateMonths(ctx, result)
	return result, nil
}

// RejectReturn deletes a pending automatic return without chaining.
func (s *Service) RejectReturn(ctx context.Context, id uuid.UUID) error {
	ctx, span := scheduleTracer.Start(ctx, "schedule.reject_return")
	defer span.End()

	appt, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.DeletePendingReturn(ctx, id); err != nil {
		return err
	}
	s.logger.Info("return rejected", "id", id, "patient", appt.PatientName)
	s.cache.Invalidate(ctx, appt.Date)
	return nil
}

// Delete removes an appointment and its mirrored history entries.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	ctx, span := scheduleTracer.Start(ctx, "schedule.delete")
	defer span.End()
	start := time.Now()
	defer func() { s.metrics.ObserveLatency("delete", time.Since(start).Seconds()) }()

	appt, err := s.store.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.Delete(ctx, id); err != nil {
		s.metrics.ObserveBooking("delete", "error")
		return err
	}
	s.metrics.ObserveBooking("delete", "deleted")
	s.logger.Info("appointment deleted", "id", id, "patient", appt.PatientName, "date", appt.Date)
	s.cache.Invalidate(ctx, appt.Date)
	return nil
}

// Day returns the appointments of one calendar day.
func (s *Service) Day(ctx context.Context, date string) ([]Appointment, error) {
	if _, err := ParseDate(date); err != nil {
		return nil, ErrInvalidDate
	}
	return s.store.ListForDay(ctx, date)
}

// Month returns the appointments of one calendar month.
func (s *Service) Month(ctx context.Context, year int, month time.Month) ([]Appointment, error) {
	return s.store.ListForMonth(ctx, year, month)
}

// MonthCounts returns the per-day appointment counts of a month, serving
// from the Redis cache when warm.
func (s *Service) MonthCounts(ctx context.Context, year int, month time.Month) (map[string]int, error) {
	if counts, hit, err := s.cache.Get(ctx, year, month); err == nil && hit {
		return counts, nil
	} else if err != nil {
		s.logger.Warn("month cache read failed", "error", err)
	}

	counts, err := s.store.DayCounts(ctx, year, month)
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, year, month, counts); err != nil {
		s.logger.Warn("month cache write failed", "error", err)
	}
	return counts, nil
}

// Get returns a single appointment.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.store.GetByID(ctx, id)
}

// spawnReturn plans and persists the automatic follow-up of an origin
// appointment, recording a warning instead of failing when it conflicts.
func (s *Service) spawnReturn(ctx context.Context, origin *Appointment, catalog []procedures.Procedure, result *BookingResult) {
	draft, err := s.planner.PlanReturn(origin, catalog)
	if err != nil {
		s.logger.Error("plan return", "origin_id", origin.ID, "error", err)
		return
	}
	if draft == nil {
		return
	}

	conflicted, err := s.store.Create(ctx, draft, true)
	if err != nil {
		s.logger.Error("create return", "origin_id", origin.ID, "error", err)
		result.Warnings = append(result.Warnings, "automatic return could not be scheduled; book the follow-up manually")
		return
	}
	s.metrics.ObserveReturnPlanned()
	s.logger.Info("return planned", "origin_id", origin.ID, "return_id", draft.ID, "date", draft.Date)
	result.Return = draft
	if conflicted {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("return scheduled for %s conflicts with an existing appointment; adjust manually", draft.Date))
	}
}

// propagate applies an edit to the appointment's pending returns. The
// primary edit has already committed: per-dependent failures are logged,
// not surfaced individually.
func (s *Service) propagate(ctx context.Context, origin *Appointment, edit *AppointmentUpdate, result *BookingResult) {
	dependents, err := s.store.ListDependents(ctx, origin.ID)
	if err != nil {
		s.logger.Error("list dependents", "origin_id", origin.ID, "error", err)
		return
	}
	if len(dependents) == 0 {
		return
	}

	catalog, err := s.resolveProcedures(ctx, origin.ProcedureIDs)
	if err != nil {
		s.logger.Error("propagate: resolve procedures", "origin_id", origin.ID, "error", err)
		return
	}

	updates, err := s.planner.PropagateEdit(origin, edit, dependents, catalog)
	if err != nil {
		s.logger.Error("propagate: compute updates", "origin_id", origin.ID, "error", err)
		return
	}
	if len(updates) == 0 {
		return
	}

	var dates []string
	for _, du := range updates {
		dep, _, err := s.store.Update(ctx, du.AppointmentID, &du.Update, true)
		if err != nil {
			s.logger.Error("propagate: update dependent", "dependent_id", du.AppointmentID, "error", err)
			continue
		}
		dates = append(dates, dep.Date)
	}
	result.Warnings = append(result.Warnings, "pending return visits were updated to match")
	s.cache.Invalidate(ctx, dates...)
}

func (s *Service) resolveProcedures(ctx context.Context, ids []uuid.UUID) ([]procedures.Procedure, error) {
	procs, err := s.catalog.GetByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("schedule: resolve procedures: %w", err)
	}
	if len(procs) != len(ids) {
		return nil, procedures.ErrProcedureNotFound
	}
	return procs, nil
}

// invalidateMonths drops the cached months touched by a write.
func (s *Service) invalidateMonths(ctx context.Context, result *BookingResult) {
	var dates []string
	if result.Appointment != nil {
		dates = append(dates, result.Appointment.Date)
	}
	if result.Return != nil {
		dates = append(dates, result.Return.Date)
	}
	s.cache.Invalidate(ctx, dates...)
}
