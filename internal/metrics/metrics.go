// Package metrics exposes Prometheus collectors for the sync service.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	syncRunsTotal              *prometheus.CounterVec
	syncRunDurationSeconds     prometheus.Histogram
	syncCandidatesFetchedTotal prometheus.Counter
	syncRecordsInsertedTotal   prometheus.Counter
	syncRecordsArchivedTotal   prometheus.Counter
	feedFetchErrorsTotal       *prometheus.CounterVec
	httpRequestsTotal          *prometheus.CounterVec
	httpRequestDurationSeconds *prometheus.HistogramVec

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		syncRunsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "papersync_runs_total",
				Help: "Total number of sync runs, labeled by terminal state.",
			},
			[]string{"state"},
		)

		syncRunDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "papersync_run_duration_seconds",
				Help:    "Histogram of end-to-end sync run durations.",
				Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
			},
		)

		syncCandidatesFetchedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "papersync_candidates_fetched_total",
				Help: "Total number of candidate papers fetched from the feed.",
			},
		)

		syncRecordsInsertedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "papersync_records_inserted_total",
				Help: "Total number of records inserted into the store.",
			},
		)

		syncRecordsArchivedTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "papersync_records_archived_total",
				Help: "Total number of records archived by retention trimming.",
			},
		)

		feedFetchErrorsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "papersync_feed_fetch_errors_total",
				Help: "Total number of failed feed fetches, labeled by category.",
			},
			[]string{"category"},
		)

		httpRequestsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests, labeled by method and code.",
			},
			[]string{"method", "code"},
		)

		httpRequestDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Histogram of HTTP request latencies, labeled by method and route.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
			},
			[]string{"method", "route"},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRun records the terminal state and duration of a sync run.
func ObserveRun(state string, duration time.Duration) {
	syncRunsTotal.WithLabelValues(state).Inc()
	syncRunDurationSeconds.Observe(duration.Seconds())
}

// ObserveRunCounts adds per-run record counters after a run completes.
func ObserveRunCounts(fetched, inserted, archived int) {
	if fetched > 0 {
		syncCandidatesFetchedTotal.Add(float64(fetched))
	}
	if inserted > 0 {
		syncRecordsInsertedTotal.Add(float64(inserted))
	}
	if archived > 0 {
		syncRecordsArchivedTotal.Add(float64(archived))
	}
}

// ObserveFeedError increments the fetch error counter for a category.
func ObserveFeedError(category string) {
	feedFetchErrorsTotal.WithLabelValues(category).Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
