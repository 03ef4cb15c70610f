package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// CheckoutMetrics records checkout outcomes and payment session activity.
type CheckoutMetrics struct {
	outcomes    *prometheus.CounterVec
	created     *prometheus.CounterVec
	transitions *prometheus.CounterVec
	wait        *prometheus.HistogramVec
}

// NewCheckoutMetrics registers the checkout metrics on the provided registerer.
// A nil registerer yields a recorder that drops every observation.
func NewCheckoutMetrics(reg prometheus.Registerer) *CheckoutMetrics {
	if reg == nil {
		return &CheckoutMetrics{}
	}
	outcomes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_outcomes_total",
		Help: "Checkout attempts by terminal status.",
	}, []string{"status"})
	created := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_sessions_created_total",
		Help: "Payment sessions created, by payment method.",
	}, []string{"method"})
	transitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "payment_session_transitions_total",
		Help: "Payment session status transitions, by target status.",
	}, []string{"to"})
	wait := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_confirmation_wait_seconds",
		Help:    "Time spent waiting for a payment session to settle.",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 300, 600},
	}, []string{"method"})
	reg.MustRegister(outcomes, created, transitions, wait)
	return &CheckoutMetrics{
		outcomes:    outcomes,
		created:     created,
		transitions: transitions,
		wait:        wait,
	}
}

// IncOutcome counts a checkout that reached the given status.
func (c *CheckoutMetrics) IncOutcome(status string) {
	if c == nil || c.outcomes == nil {
		return
	}
	c.outcomes.WithLabelValues(normalizeLabel(status)).Inc()
}

// IncSessionCreated counts a newly created payment session.
func (c *CheckoutMetrics) IncSessionCreated(method string) {
	if c == nil || c.created == nil {
		return
	}
	c.created.WithLabelValues(normalizeLabel(method)).Inc()
}

// IncTransition counts a session moving to the given status.
func (c *CheckoutMetrics) IncTransition(to string) {
	if c == nil || c.transitions == nil {
		return
	}
	c.transitions.WithLabelValues(normalizeLabel(to)).Inc()
}

// ObserveWait records how long a checkout waited on confirmation.
func (c *CheckoutMetrics) ObserveWait(method string, duration time.Duration) {
	if c == nil || c.wait == nil {
		return
	}
	c.wait.WithLabelValues(normalizeLabel(method)).Observe(duration.Seconds())
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
