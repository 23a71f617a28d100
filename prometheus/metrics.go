package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// HTTP request counter by endpoint and status
	HttpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adoption_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"method", "path", "status"},
	)

	// Adoption submissions by outcome
	SubmissionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adoption_submissions_total",
			Help: "Total number of adoption request submissions by outcome",
		},
		[]string{"outcome"}, // outcome can be "created", "resubmitted", "rejected"
	)

	// Approvals (each approval also rejects the rival requests)
	ApprovalCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "adoption_approvals_total",
			Help: "Total number of approved adoption requests",
		},
	)

	// Single admin rejections
	RejectionCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "adoption_rejections_total",
			Help: "Total number of rejected adoption requests",
		},
	)

	// Finalized claims
	ClaimCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "adoption_claims_total",
			Help: "Total number of cats marked as taken by their adopter",
		},
	)

	// Login counters
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "adoption_login_total",
			Help: "Total number of login attempts",
		},
	)

	// Registration counters
	RegisterCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "adoption_register_total",
			Help: "Total number of user registrations",
		},
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "adoption_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // type can be "login_failure", "invalid_token", "db_error" etc.
	)
)

// Histogram metrics
var (
	// Request duration
	HttpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adoption_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Database operation duration
	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "adoption_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // operation can be "query", "insert", "update", "transaction"
	)
)

// Gauge metrics
var (
	// System info
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "adoption_info",
			Help: "Information about the adoption service",
		},
		[]string{"version"},
	)
)

func init() {
	// Register counters
	prometheus.MustRegister(HttpRequestsTotal)
	prometheus.MustRegister(SubmissionCounter)
	prometheus.MustRegister(ApprovalCounter)
	prometheus.MustRegister(RejectionCounter)
	prometheus.MustRegister(ClaimCounter)
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(RegisterCounter)
	prometheus.MustRegister(AuthErrorCounter)

	// Register histograms
	prometheus.MustRegister(HttpRequestDuration)
	prometheus.MustRegister(DBOperationDuration)

	// Register gauges
	prometheus.MustRegister(InfoGauge)

	// Set initial service info
	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// RecordSubmission records an adoption submission outcome
func RecordSubmission(outcome string) {
	SubmissionCounter.With(prometheus.Labels{"outcome": outcome}).Inc()
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}
