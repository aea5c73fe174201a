package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	apiRequestsTotal     *prometheus.CounterVec
	apiLatencySeconds    *prometheus.HistogramVec
	apiErrorsTotal       *prometheus.CounterVec
	attemptsStartedTotal prometheus.Counter
	attemptsClosedTotal  *prometheus.CounterVec
	examEventsTotal      *prometheus.CounterVec
	certificatesTotal    prometheus.Counter
	resultsComputedTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used across the exam
// API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exam_api_requests_total",
			Help: "Total number of exam API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "exam_api_latency_seconds",
			Help:    "Latency distribution for exam API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exam_api_errors_total",
			Help: "Total number of error responses returned by exam endpoints.",
		}, []string{"method", "route", "status"})

		attemptsStartedTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "exam_attempts_started_total",
			Help: "Total number of attempt sessions opened.",
		})

		attemptsClosedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exam_attempts_closed_total",
			Help: "Total number of attempt sessions closed, by closure reason.",
		}, []string{"reason"})

		examEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exam_events_published_total",
			Help: "Total number of logical exam events published to brokers.",
		}, []string{"type"})

		certificatesTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "exam_certificates_issued_total",
			Help: "Total number of certificates issued.",
		})

		resultsComputedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "exam_results_computed_total",
			Help: "Total number of final results computed, by verdict.",
		}, []string{"verdict"})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			attemptsStartedTotal,
			attemptsClosedTotal,
			examEventsTotal,
			certificatesTotal,
			resultsComputedTotal,
		)
	})
}

// APIRequests exposes the counter for exam API requests.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the latency histogram for exam API requests.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for exam API error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// AttemptsStarted exposes the counter for opened attempt sessions.
func AttemptsStarted() prometheus.Counter {
	RegisterMetrics()
	return attemptsStartedTotal
}

// AttemptsClosed exposes the counter for closed attempt sessions.
func AttemptsClosed() *prometheus.CounterVec {
	RegisterMetrics()
	return attemptsClosedTotal
}

// ExamEventsPublished exposes the counter for published exam events.
func ExamEventsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return examEventsTotal
}

// CertificatesIssued exposes the counter for issued certificates.
func CertificatesIssued() prometheus.Counter {
	RegisterMetrics()
	return certificatesTotal
}

// ResultsComputed exposes the counter for computed final results.
func ResultsComputed() *prometheus.CounterVec {
	RegisterMetrics()
	return resultsComputedTotal
}
