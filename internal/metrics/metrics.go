// Package metrics provides Prometheus instrumentation for the indexer.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// EventsTotal counts feed events processed, partitioned by type.
	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookidx_events_total",
		Help: "Total feed events processed",
	}, []string{"type"})

	// EventDuration tracks per-handler processing latency.
	EventDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "bookidx_event_duration_seconds",
		Help:    "Event handler latency in seconds",
		Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
	}, []string{"type"})

	// MissingEntity counts events dropped because a referenced entity was
	// absent from the store.
	MissingEntity = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookidx_missing_entity_total",
		Help: "Events skipped due to a missing referenced entity",
	}, []string{"entity"})

	// Anomalies counts accounting values that went out of range (negative
	// depth, negative open amount, negative spread). Processing continues;
	// this counter is how the condition surfaces.
	Anomalies = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookidx_anomalies_total",
		Help: "Accounting anomalies observed while processing",
	}, []string{"kind"})

	// StoreErrors counts failed entity store operations.
	StoreErrors = promauto.NewCounter(prometheus.CounterOpts{
		Name: "bookidx_store_errors_total",
		Help: "Entity store operation failures",
	})

	// BlocksProcessed tracks the latest block number seen on the feed.
	BlocksProcessed = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "bookidx_latest_block",
		Help: "Latest block number observed on the feed",
	})

	// HTTPRequests counts requests on the ops HTTP surface.
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "bookidx_http_requests_total",
		Help: "HTTP requests by method and path",
	}, []string{"method", "path"})
)

// Middleware records request counts for the ops HTTP surface.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		HTTPRequests.WithLabelValues(r.Method, r.URL.Path).Inc()
		next.ServeHTTP(w, r)
	})
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveEvent records one processed event of the given type.
func ObserveEvent(eventType string, start time.Time) {
	EventsTotal.WithLabelValues(eventType).Inc()
	EventDuration.WithLabelValues(eventType).Observe(time.Since(start).Seconds())
}
