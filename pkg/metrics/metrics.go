package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "toystore"

// StoreMetrics records auth and cart activity for one process.
type StoreMetrics struct {
	authAttempts        *prometheus.CounterVec
	authDuration        *prometheus.HistogramVec
	cartMutations       *prometheus.CounterVec
	persistenceFailures *prometheus.CounterVec
}

// NewStoreMetrics registers the storefront metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	if reg == nil {
		return &StoreMetrics{}
	}
	authAttempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Sign-in and sign-up attempts by outcome.",
	}, []string{"op", "result"})
	authDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "auth_duration_seconds",
		Help:      "Time spent verifying credentials.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"op"})
	cartMutations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "cart_mutations_total",
		Help:      "Applied cart mutations.",
	}, []string{"op"})
	persistenceFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "persistence_failures_total",
		Help:      "Failed reads or writes against durable storage.",
	}, []string{"record"})
	reg.MustRegister(authAttempts, authDuration, cartMutations, persistenceFailures)
	return &StoreMetrics{
		authAttempts:        authAttempts,
		authDuration:        authDuration,
		cartMutations:       cartMutations,
		persistenceFailures: persistenceFailures,
	}
}

// ObserveAuth records one credential check.
func (m *StoreMetrics) ObserveAuth(op string, ok bool, duration time.Duration) {
	if m == nil || m.authAttempts == nil {
		return
	}
	result := "success"
	if !ok {
		result = "failure"
	}
	m.authAttempts.WithLabelValues(normalizeLabel(op), result).Inc()
	m.authDuration.WithLabelValues(normalizeLabel(op)).Observe(duration.Seconds())
}

// IncCartMutation counts an applied cart mutation.
func (m *StoreMetrics) IncCartMutation(op string) {
	if m == nil || m.cartMutations == nil {
		return
	}
	m.cartMutations.WithLabelValues(normalizeLabel(op)).Inc()
}

// IncPersistenceFailure counts a storage failure for the named record (identity, cart, account).
func (m *StoreMetrics) IncPersistenceFailure(record string) {
	if m == nil || m.persistenceFailures == nil {
		return
	}
	m.persistenceFailures.WithLabelValues(normalizeLabel(record)).Inc()
}

func normalizeLabel(value string) string {
	if value == "" {
		return "unknown"
	}
	return value
}
