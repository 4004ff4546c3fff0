package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Checkout submission outcomes.
const (
	OutcomeSucceeded  = "succeeded"
	OutcomeFailed     = "failed"
	OutcomeValidation = "validation"
	OutcomeEmptyCart  = "empty_cart"
	OutcomeInProgress = "in_progress"
)

// StorefrontMetrics records checkout attempts, snapshot persistence faults and maintenance jobs.
type StorefrontMetrics struct {
	submissions     *prometheus.CounterVec
	submitDuration  *prometheus.HistogramVec
	persistFailures *prometheus.CounterVec
	jobDuration     *prometheus.HistogramVec
	jobSuccess      *prometheus.CounterVec
	jobFailure      *prometheus.CounterVec
}

// NewStorefrontMetrics registers the storefront metrics on the provided registerer.
// A nil registerer yields a no-op recorder.
func NewStorefrontMetrics(reg prometheus.Registerer) *StorefrontMetrics {
	if reg == nil {
		return &StorefrontMetrics{}
	}
	submissions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "checkout_submissions_total",
		Help: "Checkout submission attempts by outcome.",
	}, []string{"outcome"})
	submitDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "checkout_submission_duration_seconds",
		Help:    "Duration of order-creation calls in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	persistFailures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_persist_failures_total",
		Help: "Snapshot writes that failed after the in-memory mutation was applied.",
	}, []string{"store"})
	jobDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "maintenance_job_duration_seconds",
		Help:    "Duration of maintenance jobs in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"job"})
	jobSuccess := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "maintenance_job_success_total",
		Help: "Successful maintenance job executions.",
	}, []string{"job"})
	jobFailure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "maintenance_job_failure_total",
		Help: "Failed maintenance job executions.",
	}, []string{"job"})
	reg.MustRegister(submissions, submitDuration, persistFailures, jobDuration, jobSuccess, jobFailure)
	return &StorefrontMetrics{
		submissions:     submissions,
		submitDuration:  submitDuration,
		persistFailures: persistFailures,
		jobDuration:     jobDuration,
		jobSuccess:      jobSuccess,
		jobFailure:      jobFailure,
	}
}

// IncSubmission counts one checkout attempt with the given outcome.
func (m *StorefrontMetrics) IncSubmission(outcome string) {
	if m == nil || m.submissions == nil {
		return
	}
	m.submissions.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// ObserveSubmission records how long the order-creation call took.
func (m *StorefrontMetrics) ObserveSubmission(outcome string, duration time.Duration) {
	if m == nil || m.submitDuration == nil {
		return
	}
	m.submitDuration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncPersistFailure counts a failed snapshot write for the named store (cart, wishlist, auth).
func (m *StorefrontMetrics) IncPersistFailure(store string) {
	if m == nil || m.persistFailures == nil {
		return
	}
	m.persistFailures.WithLabelValues(normalizeLabel(store)).Inc()
}

// ObserveJobDuration records the duration for the named maintenance job.
func (m *StorefrontMetrics) ObserveJobDuration(job string, duration time.Duration) {
	if m == nil || m.jobDuration == nil {
		return
	}
	m.jobDuration.WithLabelValues(normalizeLabel(job)).Observe(duration.Seconds())
}

// IncJobSuccess increments the success counter for the named job.
func (m *StorefrontMetrics) IncJobSuccess(job string) {
	if m == nil || m.jobSuccess == nil {
		return
	}
	m.jobSuccess.WithLabelValues(normalizeLabel(job)).Inc()
}

// IncJobFailure increments the failure counter for the named job.
func (m *StorefrontMetrics) IncJobFailure(job string) {
	if m == nil || m.jobFailure == nil {
		return
	}
	m.jobFailure.WithLabelValues(normalizeLabel(job)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
