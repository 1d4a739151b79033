package audit

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the audit pipeline. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	Recorded      prometheus.Counter
	Dropped       prometheus.Counter
	WriteFailures prometheus.Counter
}

// NewMetrics registers the audit metrics with the default registry.
// Call once, from main.
func NewMetrics() *Metrics {
	return &Metrics{
		Recorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shopgenie_audit_entries_recorded_total",
			Help: "Total audit entries accepted onto the write queue",
		}),
		Dropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shopgenie_audit_entries_dropped_total",
			Help: "Total audit entries dropped because the write queue was full",
		}),
		WriteFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shopgenie_audit_write_failures_total",
			Help: "Total audit entries that failed to persist",
		}),
	}
}

func (m *Metrics) recorded() {
	if m == nil {
		return
	}
	m.Recorded.Inc()
}

func (m *Metrics) dropped() {
	if m == nil {
		return
	}
	m.Dropped.Inc()
}

func (m *Metrics) writeFailed() {
	if m == nil {
		return
	}
	m.WriteFailures.Inc()
}
