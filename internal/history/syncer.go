package history

import (
	"context"
	"time"

	"github.com/enzononato/adna-harmony-suite/internal/observability/metrics"
	"github.com/enzononato/adna-harmony-suite/pkg/logging"
)

// Syncer runs the history sync pass on a ticker so the treatment record
// fills in without anyone opening the schedule.
type Syncer struct {
	store   *Store
	metrics *metrics.SchedulingMetrics
	logger  *logging.Logger
}

// NewSyncer creates a history syncer.
func NewSyncer(store *Store, m *metrics.SchedulingMetrics, logger *logging.Logger) *Syncer {
	if logger == nil {
		logger = logging.Default()
	}
	return &Syncer{store: store, metrics: m, logger: logger}
}

// SyncOnce runs a single sync pass and returns the number of new entries.
func (s *Syncer) SyncOnce(ctx context.Context) (int, error) {
	today := time.Now().UTC().Format("2006-01-02")
	inserted, err := s.store.SyncPast(ctx, today)
	if err != nil {
		return 0, err
	}
	if inserted > 0 {
		s.metrics.ObserveHistorySynced(inserted)
		s.logger.Info("treatment history synced", "new_entries", inserted)
	}
	return inserted, nil
}

// Run syncs immediately, then on every tick until the context is done.
func (s *Syncer) Run(ctx context.Context, interval time.Duration) {
	if _, err := s.SyncOnce(ctx); err != nil {
		s.logger.Error("history sync failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := s.SyncOnce(ctx); err != nil {
				s.logger.Error("history sync failed", "error", err)
			}
		}
	}
}
