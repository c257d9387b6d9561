package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "http_requests_total", Help: "Total HTTP requests"},
		[]string{"method", "path", "status"},
	)
	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	Bookings = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "bookings_total", Help: "Total registrations booked"},
	)
	TicketsValidated = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "tickets_validated_total", Help: "Total tickets validated at the door"},
	)
)

func Register() {
	prometheus.MustRegister(HTTPRequests, HTTPDuration, Bookings, TicketsValidated)
}

// Middleware records per-request counters and latency. Unmatched routes are
// labeled as such to keep cardinality bounded.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		HTTPRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		HTTPDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
