package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveOutcome("matrix", false)
	m.ObserveOutcome("matrix", false)
	m.ObserveOutcome("no-match", true)
	m.ObserveFallback(time.Second, "timeout")
	m.ObserveFallback(time.Second, "")
	m.ObserveCache(true)
	m.ObserveAuditFailure()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.outcomes.WithLabelValues("matrix", "false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.outcomes.WithLabelValues("no-match", "true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fallbackErrors.WithLabelValues("timeout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.cacheLookups.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.auditFailures))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveOutcome("matrix", false)
		m.ObserveFallback(time.Second, "timeout")
		m.ObserveCache(false)
		m.ObserveAuditFailure()
		m.ObserveMatchScore(2)
	})
}
