// Package metrics exposes Prometheus collectors for the platform service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	announcementsIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platform_announcements_ingested_total",
			Help: "Announcements seen by the crawl engine, labeled by tenant and result (created or skipped).",
		},
		[]string{"tenant", "result"},
	)

	crawlFetchFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platform_crawl_fetch_failures_total",
			Help: "Crawl target fetches that failed, labeled by tenant.",
		},
		[]string{"tenant"},
	)

	crawlRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "platform_crawl_runs_total",
			Help: "Completed full crawl runs across all tenants.",
		},
	)

	crawlTicksSkippedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "platform_crawl_ticks_skipped_total",
			Help: "Scheduler ticks skipped because the previous run was still in flight.",
		},
	)

	workflowTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "platform_workflow_transitions_total",
			Help: "Approval workflow transitions, labeled by record kind and action.",
		},
		[]string{"kind", "action"},
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
)

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveIngest counts one crawl candidate outcome for a tenant.
func ObserveIngest(tenant, result string) {
	announcementsIngestedTotal.WithLabelValues(tenant, result).Inc()
}

// ObserveFetchFailure counts one failed crawl target fetch.
func ObserveFetchFailure(tenant string) {
	crawlFetchFailuresTotal.WithLabelValues(tenant).Inc()
}

// ObserveCrawlRun counts one completed full crawl run.
func ObserveCrawlRun() {
	crawlRunsTotal.Inc()
}

// ObserveTickSkipped counts one scheduler tick skipped due to overlap.
func ObserveTickSkipped() {
	crawlTicksSkippedTotal.Inc()
}

// ObserveTransition counts one workflow transition.
func ObserveTransition(kind, action string) {
	workflowTransitionsTotal.WithLabelValues(kind, action).Inc()
}

// ObserveHTTPRequest increments the HTTP request metrics.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	httpRequestDurationSeconds.WithLabelValues(method, route).Observe(duration.Seconds())
}
