package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreMetricsRecords(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewStoreMetrics(reg)

	m.ObserveAuth("sign_in", true, 10*time.Millisecond)
	m.ObserveAuth("sign_in", false, 5*time.Millisecond)
	m.ObserveAuth("sign_in", false, 5*time.Millisecond)
	m.IncCartMutation("add")
	m.IncCartMutation("")
	m.IncPersistenceFailure("cart")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.authAttempts.WithLabelValues("sign_in", "success")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.authAttempts.WithLabelValues("sign_in", "failure")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cartMutations.WithLabelValues("add")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cartMutations.WithLabelValues("unknown")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.persistenceFailures.WithLabelValues("cart")))

	count, err := testutil.GatherAndCount(reg, "toystore_auth_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNilRegistererIsNoop(t *testing.T) {
	m := NewStoreMetrics(nil)
	assert.NotPanics(t, func() {
		m.ObserveAuth("sign_up", true, time.Millisecond)
		m.IncCartMutation("clear")
		m.IncPersistenceFailure("identity")
	})

	var nilMetrics *StoreMetrics
	assert.NotPanics(t, func() { nilMetrics.IncCartMutation("add") })
}
