package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels shared by handlers and the service.
const (
	OutcomeOK           = "ok"
	OutcomeInvalid      = "invalid_input"
	OutcomeUnknownStop  = "unknown_stop"
	OutcomeNoPath       = "no_path"
	OutcomeInconsistent = "inconsistent"
	OutcomeCanceled     = "canceled"
)

// Recorder holds the Prometheus collectors for the route service.
type Recorder struct {
	operations      *prometheus.CounterVec
	allPairs        prometheus.Histogram
	stops           prometheus.Gauge
	links           prometheus.Gauge
	mirrorFailures  *prometheus.CounterVec
	batchQueryPairs prometheus.Histogram
}

// New registers the collectors on reg. A nil reg yields collectors that are
// not exported anywhere, which is convenient for tests and CLIs.
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		operations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "transit",
			Name:      "operations_total",
			Help:      "Route service operations by operation and outcome.",
		}, []string{"operation", "outcome"}),
		allPairs: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "transit",
			Name:      "allpairs_duration_seconds",
			Help:      "Time spent recomputing all-pairs shortest paths.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16), // 0.1ms to ~3s
		}),
		stops: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "transit",
			Name:      "stops",
			Help:      "Registered stops.",
		}),
		links: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "transit",
			Name:      "edges",
			Help:      "Stored edges, duplicates included.",
		}),
		mirrorFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "transit",
			Name:      "mirror_errors_total",
			Help:      "Failed writes to the graph mirror.",
		}, []string{"operation"}),
		batchQueryPairs: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "transit",
			Name:      "batch_pairs",
			Help:      "Pairs per batch shortest-path request.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}
}

// Operation counts one finished operation.
func (r *Recorder) Operation(op, outcome string) {
	r.operations.WithLabelValues(op, outcome).Inc()
}

// AllPairs observes one all-pairs recomputation.
func (r *Recorder) AllPairs(d time.Duration) {
	r.allPairs.Observe(d.Seconds())
}

// NetworkSize publishes the current stop and edge counts.
func (r *Recorder) NetworkSize(stops, links int) {
	r.stops.Set(float64(stops))
	r.links.Set(float64(links))
}

// MirrorFailure counts a failed mirror write.
func (r *Recorder) MirrorFailure(op string) {
	r.mirrorFailures.WithLabelValues(op).Inc()
}

// BatchSize observes the number of pairs in a batch request.
func (r *Recorder) BatchSize(pairs int) {
	r.batchQueryPairs.Observe(float64(pairs))
}
