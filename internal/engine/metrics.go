package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SourceFetches counts adapter runs by source and outcome (ok, error, panic).
	SourceFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flavr",
			Name:      "source_fetches_total",
			Help:      "Source adapter invocations by outcome",
		},
		[]string{"source", "status"},
	)

	// SourceItems counts raw items returned per source.
	SourceItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flavr",
			Name:      "source_items_total",
			Help:      "Raw items returned by source adapters",
		},
		[]string{"source"},
	)

	// AggregationDuration measures one full fan-out run.
	AggregationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "flavr",
			Name:      "aggregation_duration_seconds",
			Help:      "Duration of aggregation runs in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"pipeline"},
	)

	// CacheLookups counts trending cache lookups by result (hit, miss, l2_hit).
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flavr",
			Name:      "cache_lookups_total",
			Help:      "Freshness cache lookups by result",
		},
		[]string{"cache", "result"},
	)

	// CacheRebuilds counts rebuilds by trigger (stale, forced) and outcome
	// (ok, error, superseded).
	CacheRebuilds = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "flavr",
			Name:      "cache_rebuilds_total",
			Help:      "Freshness cache rebuilds",
		},
		[]string{"cache", "trigger", "status"},
	)
)

func recordSource(name, status string, items int) {
	SourceFetches.WithLabelValues(name, status).Inc()
	if items > 0 {
		SourceItems.WithLabelValues(name).Add(float64(items))
	}
}

// TrackOperation logs a warning if an operation takes longer than threshold
// and records its duration under the given pipeline label.
func TrackOperation(ctx context.Context, name string, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	AggregationDuration.WithLabelValues(name).Observe(elapsed.Seconds())
	if elapsed > 5*time.Second {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
