package server

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors. A nil *Metrics is valid and
// records nothing, so tests and trimmed deployments can skip registration.
type Metrics struct {
	commands       *prometheus.CounterVec
	roomsActive    prometheus.Gauge
	tickDuration   prometheus.Histogram
	timeouts       *prometheus.CounterVec
	broadcastBytes prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = "pong"
	}
	factory := promauto.With(reg)
	return &Metrics{
		commands: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Inbound commands processed, by command type.",
		}, []string{"command"}),
		roomsActive: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rooms_active",
			Help:      "Rooms currently alive in the registry.",
		}),
		tickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Wall-clock cost of one full simulation sweep.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
		timeouts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "room_timeouts_total",
			Help:      "Rooms destroyed by lifecycle deadlines, by reason.",
		}, []string{"reason"}),
		broadcastBytes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "broadcast_bytes_total",
			Help:      "Payload bytes written to clients.",
		}),
	}
}

func (m *Metrics) CountCommand(name string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(name).Inc()
}

func (m *Metrics) SetRoomsActive(n int) {
	if m == nil {
		return
	}
	m.roomsActive.Set(float64(n))
}

func (m *Metrics) ObserveTick(d time.Duration) {
	if m == nil {
		return
	}
	m.tickDuration.Observe(d.Seconds())
}

func (m *Metrics) CountTimeout(reason string) {
	if m == nil {
		return
	}
	m.timeouts.WithLabelValues(reason).Inc()
}

func (m *Metrics) CountBroadcastBytes(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.broadcastBytes.Add(float64(n))
}
