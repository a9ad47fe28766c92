// Package metrics exposes console gauges on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Console tracks live page resources. A nil *Console is a valid no-op.
type Console struct {
	Pages         prometheus.Gauge
	Subscriptions prometheus.Gauge
	Streams       prometheus.Gauge
	Countdowns    prometheus.Gauge
	Snapshots     prometheus.Counter
}

func NewConsole(reg prometheus.Registerer) *Console {
	m := &Console{
		Pages: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "room_console", Name: "pages_active",
			Help: "Open page instances (websocket connections).",
		}),
		Subscriptions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "room_console", Name: "room_subscriptions_active",
			Help: "Live room-list subscriptions.",
		}),
		Streams: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "room_console", Name: "capture_streams_active",
			Help: "Capture streams held by cards and preview modals.",
		}),
		Countdowns: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "room_console", Name: "qr_countdowns_active",
			Help: "Running QR countdown timers.",
		}),
		Snapshots: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "room_console", Name: "room_snapshots_rendered_total",
			Help: "Room snapshots rendered into a page.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Pages, m.Subscriptions, m.Streams, m.Countdowns, m.Snapshots)
	}
	return m
}

func (m *Console) PageOpened() {
	if m != nil {
		m.Pages.Inc()
	}
}

func (m *Console) PageClosed() {
	if m != nil {
		m.Pages.Dec()
	}
}

func (m *Console) SubscriptionStarted() {
	if m != nil {
		m.Subscriptions.Inc()
	}
}

func (m *Console) SubscriptionCancelled() {
	if m != nil {
		m.Subscriptions.Dec()
	}
}

func (m *Console) StreamOpened() {
	if m != nil {
		m.Streams.Inc()
	}
}

func (m *Console) StreamStopped() {
	if m != nil {
		m.Streams.Dec()
	}
}

func (m *Console) CountdownStarted() {
	if m != nil {
		m.Countdowns.Inc()
	}
}

func (m *Console) CountdownCleared() {
	if m != nil {
		m.Countdowns.Dec()
	}
}

func (m *Console) SnapshotRendered() {
	if m != nil {
		m.Snapshots.Inc()
	}
}
