package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestDuration tracks request latency by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "path", "status"},
	)

	// BracketOrdersTotal counts bracket order operations by action and outcome.
	BracketOrdersTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "terminal_bracket_orders_total",
			Help: "Total number of bracket order operations",
		},
		[]string{"action", "outcome"},
	)

	// ValidationFailuresTotal counts rejected bracket order specs by rule.
	ValidationFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "terminal_validation_failures_total",
			Help: "Total number of bracket order validation failures by rule",
		},
		[]string{"rule"},
	)

	// WSConnections tracks currently connected WebSocket clients.
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "terminal_ws_connections",
			Help: "Currently connected WebSocket clients",
		},
	)
)

// Prometheus records request metrics for every route.
func Prometheus() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start).Seconds()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}

		HTTPRequestDuration.WithLabelValues(
			c.Request.Method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Observe(duration)
	}
}
