// Package metrics provides Prometheus metrics for the index service.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// UpstreamRequestsTotal counts DexScreener requests by status ("200", "404", "error").
	UpstreamRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "Total number of DexScreener token-pairs requests",
		},
		[]string{"status"},
	)

	// UpstreamRequestDuration is a histogram of DexScreener request latencies.
	UpstreamRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "DexScreener token-pairs request latencies",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		},
	)

	// ResolutionsTotal counts per-address resolutions by result.
	ResolutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "token_resolutions_total",
			Help: "Total number of per-address resolutions by result",
		},
		[]string{"result"},
	)

	// CollectDuration is a histogram of full collection passes.
	CollectDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "token_collect_duration_seconds",
			Help:    "Duration of collection passes over the configured targets",
			Buckets: prometheus.DefBuckets,
		},
	)

	// SnapshotTokens is the number of tokens in the last stored snapshot.
	SnapshotTokens = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "snapshot_tokens",
			Help: "Number of tokens in the most recent snapshot",
		},
	)

	// SnapshotLastUpdate is the unix timestamp of the last stored snapshot.
	SnapshotLastUpdate = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "snapshot_last_update_timestamp",
			Help: "Unix timestamp of the most recent snapshot",
		},
	)

	// HTTPRequestsTotal is a counter of served HTTP requests.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "status"},
	)
)

var initOnce sync.Once

// Init registers all metrics with the default registry. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(
			UpstreamRequestsTotal,
			UpstreamRequestDuration,
			ResolutionsTotal,
			CollectDuration,
			SnapshotTokens,
			SnapshotLastUpdate,
			HTTPRequestsTotal,
		)
	})
}

// RecordUpstreamRequest records one DexScreener request.
func RecordUpstreamRequest(status string, duration time.Duration) {
	UpstreamRequestsTotal.WithLabelValues(status).Inc()
	UpstreamRequestDuration.Observe(duration.Seconds())
}

// RecordResolution records the outcome of one address resolution.
func RecordResolution(result string) {
	ResolutionsTotal.WithLabelValues(result).Inc()
}

// RecordCollect records a collection pass.
func RecordCollect(duration time.Duration) {
	CollectDuration.Observe(duration.Seconds())
}

// RecordSnapshot records a stored snapshot.
func RecordSnapshot(tokens int, at time.Time) {
	SnapshotTokens.Set(float64(tokens))
	SnapshotLastUpdate.Set(float64(at.Unix()))
}

// RecordHTTPRequest records a served HTTP request.
func RecordHTTPRequest(route, status string) {
	HTTPRequestsTotal.WithLabelValues(route, status).Inc()
}
