// Package observability holds application metrics and tracing setup.
package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// LikeToggles counts like toggles by resulting state.
	LikeToggles = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crewz_like_toggles_total",
		Help: "Total number of like toggles by resulting state",
	}, []string{"state"})

	// MessagesSent counts direct messages by whether they opened a new conversation.
	MessagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crewz_messages_sent_total",
		Help: "Total number of direct messages sent",
	}, []string{"conversation"})

	// CounterFloorHits counts decrements skipped because the cached counter was already zero.
	CounterFloorHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crewz_counter_floor_hits_total",
		Help: "Decrements that found a cached counter already at zero",
	}, []string{"counter"})

	// FeedItemsServed observes the size of each feed page.
	FeedItemsServed = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "crewz_feed_page_size",
		Help:    "Number of items returned per feed page",
		Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
	})

	// DatabaseQueryLatency records repository operation latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "crewz_database_query_latency_seconds",
		Help:    "Repository operation latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// SlowQueries counts SQL statements slower than the GORM logger threshold.
	SlowQueries = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crewz_slow_queries_total",
		Help: "SQL statements exceeding the slow query threshold",
	})

	// SweeperRuns counts expiry sweeper executions by outcome.
	SweeperRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crewz_sweeper_runs_total",
		Help: "Expiry sweeper runs by outcome",
	}, []string{"outcome"})

	// SweptPosts counts expired content removed by the sweeper.
	SweptPosts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crewz_swept_posts_total",
		Help: "Expired stories removed by the sweeper",
	})
)

// TrackQuery returns a func that records the latency of an operation when called, typically deferred.
func TrackQuery(operation, table string) func() {
	start := time.Now()
	return func() {
		DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
	}
}
