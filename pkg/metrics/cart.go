package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// CartMetrics records cart mutations, persistence health and checkout outcomes.
type CartMetrics struct {
	mutations         *prometheus.CounterVec
	persistFailures   *prometheus.CounterVec
	rehydrateFailures prometheus.Counter
	checkouts         *prometheus.CounterVec
}

// NewCartMetrics registers the cart metrics on the provided registerer.
// A nil registerer yields a recorder whose methods are no-ops.
func NewCartMetrics(reg prometheus.Registerer) *CartMetrics {
	if reg == nil {
		return &CartMetrics{}
	}
	mutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_mutations_total",
		Help: "Cart mutations applied, by operation.",
	}, []string{"op"})
	persistFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_persist_failures_total",
		Help: "Cart snapshot writes that failed, by slot backend.",
	}, []string{"backend"})
	rehydrateFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cart_rehydrate_failures_total",
		Help: "Persisted cart snapshots that could not be parsed and were reset.",
	})
	checkouts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_attempts_total",
		Help: "Checkout attempts, by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(mutations, persistFailures, rehydrateFailures, checkouts)
	return &CartMetrics{
		mutations:         mutations,
		persistFailures:   persistFailures,
		rehydrateFailures: rehydrateFailures,
		checkouts:         checkouts,
	}
}

// IncMutation counts one applied cart mutation.
func (c *CartMetrics) IncMutation(op string) {
	if c == nil || c.mutations == nil {
		return
	}
	c.mutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncPersistFailure counts a failed snapshot write.
func (c *CartMetrics) IncPersistFailure(backend string) {
	if c == nil || c.persistFailures == nil {
		return
	}
	c.persistFailures.WithLabelValues(normalizeLabel(backend)).Inc()
}

// IncRehydrateFailure counts a snapshot that was reset on load.
func (c *CartMetrics) IncRehydrateFailure() {
	if c == nil || c.rehydrateFailures == nil {
		return
	}
	c.rehydrateFailures.Inc()
}

// IncCheckout counts a checkout attempt with the given outcome.
func (c *CartMetrics) IncCheckout(outcome string) {
	if c == nil || c.checkouts == nil {
		return
	}
	c.checkouts.WithLabelValues(normalizeLabel(outcome)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
