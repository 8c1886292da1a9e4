package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	SnapshotEncode = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mirror",
			Subsystem: "api",
			Name:      "snapshot_encode_seconds",
			Help:      "Time spent encoding the snapshot by format",
			Buckets:   []float64{.0005, .001, .005, .01, .05, .1},
		},
		[]string{"format"},
	)

	SnapshotCache = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mirror",
			Subsystem: "api",
			Name:      "snapshot_cache_total",
			Help:      "Encoded snapshot lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	RefreshRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mirror",
			Subsystem: "api",
			Name:      "refresh_requests_total",
			Help:      "Manual refresh requests by source and outcome",
		},
		[]string{"source", "outcome"},
	)
)

// Register adds the read API collectors to the default registry once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(SnapshotEncode, SnapshotCache, RefreshRequests)
	})
}
