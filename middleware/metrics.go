package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTPMetrics bundles the Prometheus collectors exposed on /metrics.
type HTTPMetrics struct {
	Requests       *prometheus.CounterVec
	Duration       *prometheus.HistogramVec
	EventsRecorded *prometheus.CounterVec
}

// NewHTTPMetrics registers the collectors on the default registry.
func NewHTTPMetrics() *HTTPMetrics {
	return &HTTPMetrics{
		Requests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests received",
		}, []string{"method", "path", "status"}),
		Duration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latency distribution of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		EventsRecorded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "analytics_events_recorded_total",
			Help: "Events accepted by the track endpoint, by event type",
		}, []string{"event_type"}),
	}
}

// Handler returns a gin middleware that records metrics per request.
func (m *HTTPMetrics) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		c.Next()

		method := c.Request.Method
		status := strconv.Itoa(c.Writer.Status())
		m.Requests.WithLabelValues(method, path, status).Inc()
		m.Duration.WithLabelValues(method, path).Observe(time.Since(start).Seconds())
	}
}
