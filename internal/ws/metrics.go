package ws

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the realtime layer. A nil *Metrics is
// valid and records nothing, which keeps tests free of registry collisions.
type Metrics struct {
	ConnectionsOpen prometheus.Gauge
	AuthFailures    prometheus.Counter
	MessagesSent    prometheus.Counter
	MessagesDropped prometheus.Counter
}

// NewMetrics registers the realtime metrics with the default registry.
// Call once, from main.
func NewMetrics() *Metrics {
	return &Metrics{
		ConnectionsOpen: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "shopgenie_ws_connections_open",
			Help: "Number of currently open websocket connections",
		}),
		AuthFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shopgenie_ws_auth_failures_total",
			Help: "Total websocket connection attempts rejected at authentication",
		}),
		MessagesSent: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shopgenie_ws_messages_sent_total",
			Help: "Total messages enqueued for delivery to a connection",
		}),
		MessagesDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "shopgenie_ws_messages_dropped_total",
			Help: "Total messages dropped because a connection was closed or slow",
		}),
	}
}

func (m *Metrics) connOpened() {
	if m == nil {
		return
	}
	m.ConnectionsOpen.Inc()
}

func (m *Metrics) connClosed() {
	if m == nil {
		return
	}
	m.ConnectionsOpen.Dec()
}

func (m *Metrics) authFailed() {
	if m == nil {
		return
	}
	m.AuthFailures.Inc()
}

func (m *Metrics) messageSent() {
	if m == nil {
		return
	}
	m.MessagesSent.Inc()
}

func (m *Metrics) messageDropped() {
	if m == nil {
		return
	}
	m.MessagesDropped.Inc()
}
