package notify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the notification store. A nil *Metrics
// is valid and records nothing.
type Metrics struct {
	Created prometheus.Counter
}

// NewMetrics registers the notification metrics with the default registry.
// Call once, from main.
func NewMetrics() *Metrics {
	return &Metrics{
		Created: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shopgenie_notifications_created_total",
			Help: "Total notifications created",
		}),
	}
}

func (m *Metrics) created() {
	if m == nil {
		return
	}
	m.Created.Inc()
}
