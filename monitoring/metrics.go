package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	HttpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HttpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	ActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_connections",
			Help: "Number of in-flight HTTP requests",
		},
	)

	// Catalog metrics
	TotalGames = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "catalog_games_total",
			Help: "Total number of games in catalog",
		},
	)

	GameOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_operations_total",
			Help: "Catalog operations by outcome",
		},
		[]string{"operation", "outcome"},
	)

	PriceRuleRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_price_rule_rejections_total",
			Help: "Games rejected by the price rule",
		},
		[]string{"reason"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors",
		},
		[]string{"type", "endpoint"},
	)

	registerOnce sync.Once
)

// InitMetrics registers the collectors with the default registry. Safe to call more than once.
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HttpRequestsTotal,
			HttpRequestDuration,
			ActiveConnections,
			TotalGames,
			GameOperations,
			PriceRuleRejections,
			ErrorsTotal,
		)
	})
}

// RecordOperation counts one catalog operation, e.g. ("create", "conflict").
func RecordOperation(operation, outcome string) {
	GameOperations.WithLabelValues(operation, outcome).Inc()
}

// PrometheusMiddleware collects metrics for each request
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		ActiveConnections.Inc()
		defer ActiveConnections.Dec()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		status := c.Writer.Status()

		HttpRequestsTotal.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(status)).Inc()
		HttpRequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())

		if status >= 500 {
			ErrorsTotal.WithLabelValues("http_error", endpoint).Inc()
		}
	}
}

// PrometheusHandler returns Prometheus metrics handler
func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
