package triage

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the triage subsystem.
type Metrics struct {
	QueueBuildsTotal   *prometheus.CounterVec
	BuildDuration      prometheus.Histogram
	PoolSize           prometheus.Histogram
	PoolTruncatedTotal prometheus.Counter
	StoreErrorsTotal   prometheus.Counter
	MutationsTotal     *prometheus.CounterVec
	DigestsTotal       *prometheus.CounterVec
}

// NewMetrics registers and returns triage metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		QueueBuildsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "claimdesk_queue_builds_total",
			Help: "Total queue view computations by outcome.",
		}, []string{"outcome"}),
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "claimdesk_queue_build_duration_seconds",
			Help:    "Duration of full queue view computations.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms .. ~4s
		}),
		PoolSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "claimdesk_pool_size_rows",
			Help:    "Size of the fetched claim pool per queue build.",
			Buckets: prometheus.ExponentialBuckets(8, 2, 8), // 8 .. ~1024
		}),
		PoolTruncatedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "claimdesk_pool_truncated_total",
			Help: "Queue builds whose pool hit the fetch limit.",
		}),
		StoreErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "claimdesk_store_errors_total",
			Help: "Pool fetch failures degraded to an empty queue view.",
		}),
		MutationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "claimdesk_mutations_total",
			Help: "Claim mutations by action and outcome.",
		}, []string{"action", "outcome"}),
		DigestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "claimdesk_digests_total",
			Help: "Ops digest notifications by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		m.QueueBuildsTotal,
		m.BuildDuration,
		m.PoolSize,
		m.PoolTruncatedTotal,
		m.StoreErrorsTotal,
		m.MutationsTotal,
		m.DigestsTotal,
	)

	return m
}
