package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	httpRequestsTotal    *prometheus.CounterVec
	httpLatencySeconds   *prometheus.HistogramVec
	httpErrorsTotal      *prometheus.CounterVec
	submissionsTotal     *prometheus.CounterVec
	submissionScoreRatio prometheus.Histogram
	droppedAnswersTotal  prometheus.Counter
	quizCacheTotal       *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		httpRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_http_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		httpLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "quiz_http_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		httpErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_http_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		submissionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_submissions_total",
			Help: "Submissions processed by the grading engine, by outcome.",
		}, []string{"outcome"})

		submissionScoreRatio = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "quiz_submission_score_ratio",
			Help:    "Score divided by total points for graded submissions.",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		})

		droppedAnswersTotal = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quiz_submission_dropped_answers_total",
			Help: "Answers discarded because they did not resolve to a question of the quiz.",
		})

		quizCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quiz_public_cache_total",
			Help: "Public quiz cache lookups, by result.",
		}, []string{"result"})

		prometheus.MustRegister(
			httpRequestsTotal,
			httpLatencySeconds,
			httpErrorsTotal,
			submissionsTotal,
			submissionScoreRatio,
			droppedAnswersTotal,
			quizCacheTotal,
		)
	})
}

// HTTPRequests exposes the request counter.
func HTTPRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return httpRequestsTotal
}

// HTTPLatency exposes the request latency histogram.
func HTTPLatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return httpLatencySeconds
}

// HTTPErrors exposes the error response counter.
func HTTPErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return httpErrorsTotal
}

// Submissions exposes the grading outcome counter.
func Submissions() *prometheus.CounterVec {
	RegisterMetrics()
	return submissionsTotal
}

// SubmissionScoreRatio exposes the score ratio histogram.
func SubmissionScoreRatio() prometheus.Histogram {
	RegisterMetrics()
	return submissionScoreRatio
}

// DroppedAnswers exposes the dropped answer counter.
func DroppedAnswers() prometheus.Counter {
	RegisterMetrics()
	return droppedAnswersTotal
}

// QuizCache exposes the public quiz cache counter.
func QuizCache() *prometheus.CounterVec {
	RegisterMetrics()
	return quizCacheTotal
}
