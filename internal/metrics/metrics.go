package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics exposes counters/histograms for upstream traffic and caching.
// All observe methods are safe on a nil receiver so callers that run
// without metrics (tests, one-off tools) can pass nil.
type Metrics struct {
	upstreamTotal   *prometheus.CounterVec
	cacheEvents     *prometheus.CounterVec
	refreshDuration prometheus.Histogram
}

func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		upstreamTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "facilitybuddy",
			Subsystem: "upstream",
			Name:      "requests_total",
			Help:      "Total requests to the scheduling site and geocoder",
		}, []string{"path", "status"}),
		cacheEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "facilitybuddy",
			Subsystem: "cache",
			Name:      "events_total",
			Help:      "Cache hits and misses by cache name",
		}, []string{"cache", "event"}),
		refreshDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "facilitybuddy",
			Subsystem: "directory",
			Name:      "refresh_duration_seconds",
			Help:      "Wall time of a full directory refresh cycle",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.upstreamTotal, m.cacheEvents, m.refreshDuration)
	return m
}

func (m *Metrics) ObserveUpstreamRequest(path, status string) {
	if m == nil {
		return
	}
	m.upstreamTotal.WithLabelValues(path, status).Inc()
}

func (m *Metrics) ObserveCache(cache, event string) {
	if m == nil {
		return
	}
	m.cacheEvents.WithLabelValues(cache, event).Inc()
}

func (m *Metrics) ObserveRefreshDuration(seconds float64) {
	if m == nil {
		return
	}
	m.refreshDuration.Observe(seconds)
}
