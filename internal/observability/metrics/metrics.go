package metrics

import "github.com/prometheus/client_golang/prometheus"

// SchedulingMetrics exposes counters/histograms for the appointment book.
type SchedulingMetrics struct {
	bookingsTotal    *prometheus.CounterVec
	returnsPlanned   prometheus.Counter
	returnsConfirmed prometheus.Counter
	historySynced    prometheus.Counter
	opLatency        *prometheus.HistogramVec
}

func NewSchedulingMetrics(reg prometheus.Registerer) *SchedulingMetrics {
	m := &SchedulingMetrics{
		bookingsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "schedule",
			Name:      "bookings_total",
			Help:      "Appointment write attempts by outcome",
		}, []string{"operation", "outcome"}),
		returnsPlanned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "schedule",
			Name:      "returns_planned_total",
			Help:      "Automatic return visits created",
		}),
		returnsConfirmed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "schedule",
			Name:      "returns_confirmed_total",
			Help:      "Pending returns confirmed by staff",
		}),
		historySynced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "history",
			Name:      "entries_synced_total",
			Help:      "Treatment history entries created by the sync pass",
		}),
		opLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "schedule",
			Name:      "operation_latency_seconds",
			Help:      "Latency of scheduling operations",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsTotal, m.returnsPlanned, m.returnsConfirmed, m.historySynced, m.opLatency)
	return m
}

func (m *SchedulingMetrics) ObserveBooking(operation, outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(operation, outcome).Inc()
}

func (m *SchedulingMetrics) ObserveReturnPlanned() {
	if m == nil {
		return
	}
	m.returnsPlanned.Inc()
}

func (m *SchedulingMetrics) ObserveReturnConfirmed() {
	if m == nil {
		return
	}
	m.returnsConfirmed.Inc()
}

func (m *SchedulingMetrics) ObserveHistorySynced(count int) {
	if m == nil || count <= 0 {
		return
	}
	m.historySynced.Add(float64(count))
}

func (m *SchedulingMetrics) ObserveLatency(operation string, seconds float64) {
	if m == nil {
		return
	}
	m.opLatency.WithLabelValues(operation).Observe(seconds)
}
