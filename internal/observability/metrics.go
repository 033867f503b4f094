package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the service.
type Metrics struct {
	Activities       *prometheus.CounterVec
	Invokes          *prometheus.CounterVec
	Outbound         *prometheus.CounterVec
	StateOps         *prometheus.CounterVec
	AuthFailures     *prometheus.CounterVec
	EmulatorSessions prometheus.Gauge
	WSMessages       *prometheus.CounterVec
	TurnLatency      *prometheus.HistogramVec

	turns    *latencyWindow
	gatherer prometheus.Gatherer
}

// NewMetrics registers every instrument on reg. A nil reg means the default registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	var gatherer prometheus.Gatherer = prometheus.DefaultGatherer
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	} else if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}
	factory := promauto.With(reg)
	return &Metrics{
		Activities: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activities_total",
			Help:      "Inbound activities by bot, activity type and outcome.",
		}, []string{"bot", "type", "outcome"}),
		Invokes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "invokes_total",
			Help:      "Invoke activities by bot, invoke name and response status.",
		}, []string{"bot", "name", "status"}),
		Outbound: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "outbound_activities_total",
			Help:      "Activities posted to the connector by bot and outcome.",
		}, []string{"bot", "outcome"}),
		StateOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "state_operations_total",
			Help:      "Conversation state storage operations by backend, operation and outcome.",
		}, []string{"backend", "op", "outcome"}),
		AuthFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "auth_failures_total",
			Help:      "Rejected inbound tokens by bot and reason.",
		}, []string{"bot", "reason"}),
		EmulatorSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "emulator_sessions",
			Help:      "Number of active local emulator sessions.",
		}),
		WSMessages: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ws_messages_total",
			Help:      "Emulator WebSocket messages by direction and type.",
		}, []string{"direction", "type"}),
		TurnLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "turn_latency_ms",
			Help:      "Time to process one inbound activity in milliseconds.",
			Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		}, []string{"bot", "type"}),
		turns:    newLatencyWindow(256),
		gatherer: gatherer,
	}
}

// ObserveTurn records one processed activity.
func (m *Metrics) ObserveTurn(bot, activityType, outcome string, d time.Duration) {
	m.Activities.WithLabelValues(bot, activityType, outcome).Inc()
	ms := float64(d.Microseconds()) / 1000
	m.TurnLatency.WithLabelValues(bot, activityType).Observe(ms)
	m.turns.Observe(bot+"/"+activityType, ms)
	if outcome != "ok" {
		m.turns.ObserveIndicator(bot + "/" + outcome)
	}
}

func (m *Metrics) ObserveInvoke(bot, name string, status int) {
	m.Invokes.WithLabelValues(bot, name, strconv.Itoa(status)).Inc()
}

// ObserveOutbound implements connector.Observer.
func (m *Metrics) ObserveOutbound(bot, outcome string) {
	m.Outbound.WithLabelValues(bot, outcome).Inc()
}

// ObserveStateOp implements state.OpObserver.
func (m *Metrics) ObserveStateOp(backend, op string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.StateOps.WithLabelValues(backend, op, outcome).Inc()
}

func (m *Metrics) ObserveAuthFailure(bot, reason string) {
	m.AuthFailures.WithLabelValues(bot, reason).Inc()
}

// SnapshotTurns returns rolling latency percentiles per bot and activity type.
func (m *Metrics) SnapshotTurns() LatencySnapshot {
	return m.turns.Snapshot()
}

// Handler serves the registry these metrics were registered on.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
