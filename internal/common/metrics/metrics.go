// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	WorkerJobsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_completed_total",
			Help: "Total number of jobs completed by worker",
		},
		[]string{"task_type"},
	)

	WorkerJobsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "worker_jobs_failed_total",
			Help: "Total number of jobs failed by worker",
		},
		[]string{"task_type", "error_code"},
	)

	WorkerJobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "worker_job_duration_seconds",
			Help: "Duration of job processing in seconds",
		},
		[]string{"task_type"},
	)

	FieldsExtracted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "extraction_fields_extracted_total",
			Help: "Total number of profile fields populated by extraction passes",
		},
	)

	ExtractionPassesEmpty = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "extraction_passes_empty_total",
			Help: "Extraction passes that produced zero new fields",
		},
	)

	RecommendationWindowSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "recommendation_window_size",
			Help: "Size of the recommendation window after the last merge",
		},
	)

	RecommendationsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recommendations_evicted_total",
			Help: "Recommendations dropped by window truncation or dedup",
		},
	)
)

// JobCompleted records a successful job and its processing duration.
func JobCompleted(taskType string, start time.Time) {
	WorkerJobsCompleted.WithLabelValues(taskType).Inc()
	WorkerJobDuration.WithLabelValues(taskType).Observe(time.Since(start).Seconds())
}

// JobFailed records a failed job under its error code.
func JobFailed(taskType, errorCode string) {
	WorkerJobsFailed.WithLabelValues(taskType, errorCode).Inc()
}
