package metrics_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aulakit/aulakit/pkg/metrics"
)

func gatherValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, m := range f.GetMetric() {
			got := make(map[string]string, len(m.GetLabel()))
			for _, lp := range m.GetLabel() {
				got[lp.GetName()] = lp.GetValue()
			}
			match := true
			for k, v := range labels {
				if got[k] != v {
					match = false
					break
				}
			}
			if match {
				if c := m.GetCounter(); c != nil {
					return c.GetValue()
				}
				if h := m.GetHistogram(); h != nil {
					return float64(h.GetSampleCount())
				}
			}
		}
	}
	t.Fatalf("metric %s%v not found", name, labels)
	return 0
}

func TestRegistry_RecordsInstruments(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := metrics.NewRegistry(reg)

	m.Decision("PREMIUM", "upgrade_required")
	m.Decision("PREMIUM", "upgrade_required")
	m.Decision("FREE", "allowed")
	m.CacheHit()
	m.CacheMiss()
	m.CacheMiss()
	m.Lookup("found", 2, 150*time.Millisecond)
	m.RateLimit(true)
	m.RateLimit(false)

	assert.Equal(t, 2.0, gatherValue(t, reg, "aulakit_gate_decisions_total",
		map[string]string{"required": "PREMIUM", "outcome": "upgrade_required"}))
	assert.Equal(t, 1.0, gatherValue(t, reg, "aulakit_gate_decisions_total",
		map[string]string{"required": "FREE", "outcome": "allowed"}))
	assert.Equal(t, 1.0, gatherValue(t, reg, "aulakit_subscription_cache_hits_total", nil))
	assert.Equal(t, 2.0, gatherValue(t, reg, "aulakit_subscription_cache_misses_total", nil))
	assert.Equal(t, 1.0, gatherValue(t, reg, "aulakit_subscription_lookups_total",
		map[string]string{"outcome": "found"}))
	assert.Equal(t, 1.0, gatherValue(t, reg, "aulakit_subscription_lookup_duration_seconds", nil))
	assert.Equal(t, 1.0, gatherValue(t, reg, "aulakit_ratelimit_requests_total",
		map[string]string{"verdict": "denied"}))
}

func TestRegistry_NilIsNoop(t *testing.T) {
	t.Parallel()

	var m *metrics.Registry

	assert.NotPanics(t, func() {
		m.Decision("FREE", "allowed")
		m.CacheHit()
		m.CacheMiss()
		m.Lookup("error", 3, time.Second)
		m.RateLimit(false)
	})
}
