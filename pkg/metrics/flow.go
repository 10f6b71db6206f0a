package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// FlowMetrics records purchase flow activity.
type FlowMetrics struct {
	checkoutDuration *prometheus.HistogramVec
	checkouts        *prometheus.CounterVec
	transitions      *prometheus.CounterVec
	upgradeQuotes    *prometheus.CounterVec
	activeSessions   prometheus.Gauge
}

// NewFlowMetrics registers the flow metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewFlowMetrics(reg prometheus.Registerer) *FlowMetrics {
	if reg == nil {
		return &FlowMetrics{}
	}
	checkoutDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_duration_seconds",
		Help:    "Duration of simulated checkout runs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_completed_total",
		Help: "Completed checkouts by payment method and kind (new or upgrade).",
	}, []string{"method", "kind"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flow_transitions_total",
		Help: "Flow state operations by outcome.",
	}, []string{"operation", "outcome"})
	upgradeQuotes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "upgrade_quotes_total",
		Help: "Proration quotes computed, by the held plan.",
	}, []string{"plan"})
	activeSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "flow_sessions_active",
		Help: "Sessions currently held in memory.",
	})
	reg.MustRegister(checkoutDuration, checkouts, transitions, upgradeQuotes, activeSessions)
	return &FlowMetrics{
		checkoutDuration: checkoutDuration,
		checkouts:        checkouts,
		transitions:      transitions,
		upgradeQuotes:    upgradeQuotes,
		activeSessions:   activeSessions,
	}
}

// ObserveCheckout records a finished checkout run.
func (m *FlowMetrics) ObserveCheckout(method string, upgrade bool, duration time.Duration) {
	if m == nil || m.checkouts == nil {
		return
	}
	kind := "new"
	if upgrade {
		kind = "upgrade"
	}
	m.checkoutDuration.WithLabelValues(normalizeLabel(method)).Observe(duration.Seconds())
	m.checkouts.WithLabelValues(normalizeLabel(method), kind).Inc()
}

// IncTransition counts a flow operation; err decides the outcome label.
func (m *FlowMetrics) IncTransition(operation string, err error) {
	if m == nil || m.transitions == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	m.transitions.WithLabelValues(normalizeLabel(operation), outcome).Inc()
}

// IncUpgradeQuote counts a proration quote for the held plan.
func (m *FlowMetrics) IncUpgradeQuote(planID string) {
	if m == nil || m.upgradeQuotes == nil {
		return
	}
	m.upgradeQuotes.WithLabelValues(normalizeLabel(planID)).Inc()
}

// SetActiveSessions reports the number of sessions in memory.
func (m *FlowMetrics) SetActiveSessions(n int) {
	if m == nil || m.activeSessions == nil {
		return
	}
	m.activeSessions.Set(float64(n))
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
