// Package telemetry holds the Prometheus metrics of the dashboard process.
package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "heartdash"

var (
	// HTTPRequests counts handled requests.
	// Labels: route (gin route pattern), status
	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests by route and status",
	}, []string{"route", "status"})

	// HTTPDuration measures request latency.
	// Labels: route
	HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
	}, []string{"route"})

	// FilterCache counts memoised filter lookups.
	// Labels: result (hit, miss)
	FilterCache = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "filter",
		Name:      "cache_total",
		Help:      "Filter cache lookups by result",
	}, []string{"result"})

	// DatasetRows is the row count of the loaded dataset
	DatasetRows = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "dataset_rows",
		Help:      "Rows in the currently loaded dataset",
	})

	// ChatRequests counts chatbot questions.
	// Labels: status (ok, error, disabled)
	ChatRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "chat",
		Name:      "requests_total",
		Help:      "Chatbot questions by outcome",
	}, []string{"status"})
)

// RecordCache counts one filter cache lookup
func RecordCache(hit bool) {
	if hit {
		FilterCache.WithLabelValues("hit").Inc()
		return
	}
	FilterCache.WithLabelValues("miss").Inc()
}

// Handler exposes the default registry
func Handler() http.Handler {
	return promhttp.Handler()
}

// GinMiddleware records request counts and latency per route pattern
func GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		HTTPRequests.WithLabelValues(route, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPDuration.WithLabelValues(route).Observe(time.Since(start).Seconds())
	}
}
