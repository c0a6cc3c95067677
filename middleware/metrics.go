package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	ActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_active_requests",
			Help: "Current number of active HTTP requests",
		},
	)

	// Alert Metrics
	SOSAlertsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sos_alerts_total",
			Help: "Total number of SOS alerts by severity and trigger source",
		},
		[]string{"severity", "source"},
	)

	SOSEnrichmentDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sos_enrichment_duration_seconds",
			Help:    "Time from alert trigger to enrichment completion",
			Buckets: []float64{.5, 1, 2.5, 5, 10, 30, 60, 120},
		},
	)

	// Notification Metrics
	NotificationAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notification_attempts_total",
			Help: "Total notification delivery attempts by channel and outcome",
		},
		[]string{"channel", "status"}, // sms/email/push, delivered/failed
	)

	// Session Metrics
	SessionsStarted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sessions_started_total",
			Help: "Total escort and location sharing sessions started",
		},
		[]string{"kind"}, // guardian, followme
	)

	RouteDeviationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "route_deviations_total",
			Help: "Total route deviations detected during escort sessions",
		},
	)

	SessionsExpiredTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "sessions_expired_total",
			Help: "Total location sharing sessions ended by expiry",
		},
	)

	// Error Metrics
	ErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors by type",
		},
		[]string{"type"}, // db, auth, validation, fanout, etc.
	)
)

// MetricsMiddleware handles basic HTTP metrics
func MetricsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		method := c.Request.Method

		ActiveRequests.Inc()
		defer ActiveRequests.Dec()

		c.Next()

		HTTPRequestsTotal.WithLabelValues(
			method,
			path,
			strconv.Itoa(c.Writer.Status()),
		).Inc()

		HTTPRequestDuration.WithLabelValues(
			method,
			path,
		).Observe(time.Since(start).Seconds())
	}
}

// Helper functions for tracking specific metrics

// TrackSOSAlert increments the SOS alert counter
func TrackSOSAlert(severity, source string) {
	SOSAlertsTotal.WithLabelValues(severity, source).Inc()
}

// TrackNotification records a notification delivery attempt
func TrackNotification(channel string, delivered bool) {
	status := "failed"
	if delivered {
		status = "delivered"
	}
	NotificationAttempts.WithLabelValues(channel, status).Inc()
}

// TrackSessionStart increments the started session counter
func TrackSessionStart(kind string) {
	SessionsStarted.WithLabelValues(kind).Inc()
}

// TrackError increments the error counter by type
func TrackError(errorType string) {
	ErrorsTotal.WithLabelValues(errorType).Inc()
}
