package api

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	lookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kubelookup_lookups_total",
		Help: "Lookups served, by outcome kind.",
	}, []string{"kind"})

	lookupDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "kubelookup_lookup_duration_seconds",
		Help:    "End-to-end lookup latency.",
		Buckets: prometheus.DefBuckets,
	})
)

func observeLookup(kind string, elapsed time.Duration) {
	lookupsTotal.WithLabelValues(kind).Inc()
	lookupDuration.Observe(elapsed.Seconds())
}
