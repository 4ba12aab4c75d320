package observability

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce       sync.Once
	httpRequestsTotal  *prometheus.CounterVec
	httpLatencySeconds *prometheus.HistogramVec
	httpErrorsTotal    *prometheus.CounterVec
	attemptsTotal      *prometheus.CounterVec
	messageConnections prometheus.Counter
	messagesSent       *prometheus.CounterVec
)

// MetricsHandler exposes the Prometheus scrape endpoint via Fiber.
func MetricsHandler() fiber.Handler {
	RegisterMetrics()
	return adaptor.HTTPHandler(promhttp.Handler())
}

// RegisterMetrics initialises the Prometheus collectors used for API observability.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "prepnexus_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "prepnexus_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "prepnexus_errors_total",
			Help: "Total number of error responses returned by API endpoints.",
		}, []string{"method", "route", "status"})

		attemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "prepnexus_assessment_attempts_total",
			Help: "Assessment attempts grouped by track and derived level.",
		}, []string{"track", "level"})

		messageConnections = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "prepnexus_message_connections_total",
			Help: "Websocket messaging connections accepted.",
		})

		messagesSent = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "prepnexus_messages_sent_total",
			Help: "Direct messages sent, grouped by sender role.",
		}, []string{"sender_role"})

		prometheus.MustRegister(httpRequestsTotal, httpLatencySeconds, httpErrorsTotal,
			attemptsTotal, messageConnections, messagesSent)
	})
}

// HTTPRequests exposes the counter for API requests.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the latency histogram for API requests.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the counter for API error responses.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// AssessmentAttempts exposes the counter for completed assessment attempts.
func AssessmentAttempts() *prometheus.CounterVec {
	RegisterMetrics()
	return attemptsTotal
}

// MessageConnections exposes the counter for accepted websocket connections.
func MessageConnections() prometheus.Counter {
	RegisterMetrics()
	return messageConnections
}

// MessagesSent exposes the counter for sent direct messages.
func MessagesSent() *prometheus.CounterVec {
	RegisterMetrics()
	return messagesSent
}
