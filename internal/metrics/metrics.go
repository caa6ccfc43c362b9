package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "care_advisor"

// Metrics holds the advisory collectors. A nil *Metrics records nothing.
type Metrics struct {
	outcomes        *prometheus.CounterVec
	fallbackLatency *prometheus.HistogramVec
	fallbackErrors  *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	auditFailures   prometheus.Counter
	matchScores     prometheus.Histogram
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		outcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "advisory_outcomes_total",
			Help:      "Advisory responses by audit status and degraded flag.",
		}, []string{"status", "degraded"}),
		fallbackLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fallback_duration_seconds",
			Help:      "Generative fallback latency by result.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16},
		}, []string{"result"}),
		fallbackErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fallback_errors_total",
			Help:      "Generative fallback failures by kind.",
		}, []string{"kind"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "proposal_cache_lookups_total",
			Help:      "Proposal cache lookups by outcome.",
		}, []string{"outcome"}),
		auditFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_write_failures_total",
			Help:      "Audit log rows that could not be written.",
		}),
		matchScores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "keyword_match_score",
			Help:      "Best keyword match score per request.",
			Buckets:   []float64{0, 1, 2, 3, 4, 6},
		}),
	}

	reg.MustRegister(
		m.outcomes,
		m.fallbackLatency,
		m.fallbackErrors,
		m.cacheLookups,
		m.auditFailures,
		m.matchScores,
	)

	return m
}

func (m *Metrics) ObserveOutcome(status string, degraded bool) {
	if m == nil {
		return
	}
	d := "false"
	if degraded {
		d = "true"
	}
	m.outcomes.WithLabelValues(status, d).Inc()
}

// ObserveFallback records one Propose call; kind is "" on success.
func (m *Metrics) ObserveFallback(elapsed time.Duration, kind string) {
	if m == nil {
		return
	}
	result := "ok"
	if kind != "" {
		result = "error"
		m.fallbackErrors.WithLabelValues(kind).Inc()
	}
	m.fallbackLatency.WithLabelValues(result).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveCache(hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.cacheLookups.WithLabelValues(outcome).Inc()
}

func (m *Metrics) ObserveAuditFailure() {
	if m == nil {
		return
	}
	m.auditFailures.Inc()
}

func (m *Metrics) ObserveMatchScore(score int) {
	if m == nil {
		return
	}
	m.matchScores.Observe(float64(score))
}
