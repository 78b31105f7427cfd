package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	leadsReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leads_received_total",
			Help: "Total number of leads accepted by the intake pipeline",
		},
		[]string{"category", "source"},
	)

	leadsDuplicated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "leads_duplicated_total",
			Help: "Total number of intake submissions suppressed as duplicates",
		},
	)

	reportsServed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "analytics_reports_served_total",
			Help: "Total number of analytics reports served",
		},
		[]string{"type", "cache"},
	)
)

// Metrics records request counts and latencies per route. It uses the gin
// route template, not the raw path, so /leads/:id stays one series.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())

		httpRequestsTotal.WithLabelValues(c.Request.Method, path, status).Inc()
		httpRequestDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordLeadReceived counts an accepted intake lead.
func RecordLeadReceived(category, source string) {
	leadsReceived.WithLabelValues(category, source).Inc()
}

// RecordLeadDuplicated counts a suppressed duplicate submission.
func RecordLeadDuplicated() {
	leadsDuplicated.Inc()
}

// RecordReportServed counts an analytics report, labeled by whether it came
// from cache ("hit") or was recomputed ("miss").
func RecordReportServed(reportType, cache string) {
	reportsServed.WithLabelValues(reportType, cache).Inc()
}
