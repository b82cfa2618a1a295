package liveness

import "github.com/prometheus/client_golang/prometheus"

var (
	sweepsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "minichat",
		Name:      "sweeps_total",
		Help:      "Number of liveness sweeps.",
	})
	evictionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "minichat",
		Name:      "evictions_total",
		Help:      "Number of participants evicted for a stale heartbeat.",
	})
	sweepErrors = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "minichat",
		Name:      "sweep_errors_total",
		Help:      "Store errors met while sweeping.",
	})
	sweepDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "minichat",
		Name:      "sweep_duration_seconds",
		Help:      "Duration of a liveness sweep.",
		Buckets:   prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(sweepsTotal, evictionsTotal, sweepErrors, sweepDuration)
}
