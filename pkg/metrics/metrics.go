package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// AccessRecorder observes gate decisions.
type AccessRecorder interface {
	Decision(required, outcome string)
}

// CacheRecorder observes subscription cache traffic.
type CacheRecorder interface {
	CacheHit()
	CacheMiss()
}

// LookupRecorder observes subscription lookups.
type LookupRecorder interface {
	Lookup(outcome string, attempts int, elapsed time.Duration)
}

// RateLimitRecorder observes rate limit verdicts.
type RateLimitRecorder interface {
	RateLimit(allowed bool)
}

// Registry bundles the prometheus instruments. The zero value is unusable;
// build it with NewRegistry. A nil *Registry is a no-op on every method, so
// callers never need nil checks.
type Registry struct {
	decisions  *prometheus.CounterVec
	cacheHits  prometheus.Counter
	cacheMiss  prometheus.Counter
	lookups    *prometheus.CounterVec
	lookupTime prometheus.Histogram
	attempts   prometheus.Histogram
	rateLimit  *prometheus.CounterVec
}

// NewRegistry creates the instruments and registers them on reg. Pass
// prometheus.DefaultRegisterer outside tests.
func NewRegistry(reg prometheus.Registerer) *Registry {
	m := &Registry{
		decisions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aulakit",
			Subsystem: "gate",
			Name:      "decisions_total",
			Help:      "Gate decisions by required level and outcome.",
		}, []string{"required", "outcome"}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aulakit",
			Subsystem: "subscription",
			Name:      "cache_hits_total",
			Help:      "Subscription cache hits.",
		}),
		cacheMiss: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aulakit",
			Subsystem: "subscription",
			Name:      "cache_misses_total",
			Help:      "Subscription cache misses.",
		}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aulakit",
			Subsystem: "subscription",
			Name:      "lookups_total",
			Help:      "Subscription lookups by outcome.",
		}, []string{"outcome"}),
		lookupTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "aulakit",
			Subsystem: "subscription",
			Name:      "lookup_duration_seconds",
			Help:      "Subscription lookup duration including retries.",
			Buckets:   prometheus.DefBuckets,
		}),
		attempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "aulakit",
			Subsystem: "subscription",
			Name:      "lookup_attempts",
			Help:      "Attempts consumed per subscription lookup.",
			Buckets:   []float64{1, 2, 3, 4, 5},
		}),
		rateLimit: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "aulakit",
			Subsystem: "ratelimit",
			Name:      "requests_total",
			Help:      "Rate limit verdicts.",
		}, []string{"verdict"}),
	}

	reg.MustRegister(
		m.decisions,
		m.cacheHits,
		m.cacheMiss,
		m.lookups,
		m.lookupTime,
		m.attempts,
		m.rateLimit,
	)
	return m
}

// Decision records one gate decision.
func (m *Registry) Decision(required, outcome string) {
	if m == nil {
		return
	}
	m.decisions.WithLabelValues(required, outcome).Inc()
}

// CacheHit records a subscription cache hit.
func (m *Registry) CacheHit() {
	if m == nil {
		return
	}
	m.cacheHits.Inc()
}

// CacheMiss records a subscription cache miss.
func (m *Registry) CacheMiss() {
	if m == nil {
		return
	}
	m.cacheMiss.Inc()
}

// Lookup records one subscription lookup with its retry cost.
func (m *Registry) Lookup(outcome string, attempts int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.lookups.WithLabelValues(outcome).Inc()
	m.lookupTime.Observe(elapsed.Seconds())
	m.attempts.Observe(float64(attempts))
}

// RateLimit records one rate limit verdict.
func (m *Registry) RateLimit(allowed bool) {
	if m == nil {
		return
	}
	verdict := "allowed"
	if !allowed {
		verdict = "denied"
	}
	m.rateLimit.WithLabelValues(verdict).Inc()
}
