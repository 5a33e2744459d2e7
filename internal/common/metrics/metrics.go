// internal/common/metrics/metrics.go
package metrics

import (
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

	AuditRecords = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_records_total",
			Help: "Records classified, by category label and outcome",
		},
		[]string{"category_label", "outcome"},
	)

	AuditAdvisories = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_advisory_total",
			Help: "Advisory assessments, by suggested type",
		},
		[]string{"suggested_type"},
	)

	AuditAdvisoryFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_advisory_failures_total",
			Help: "Advisory calls that degraded to an error assessment",
		},
		[]string{"reason"},
	)

	LLMCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "audit_llm_call_duration_seconds",
			Help:    "Duration of LLM calls including retries",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20},
		},
		[]string{"status"},
	)

	AuditRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "audit_runs_total",
			Help: "Audit runs, by final status",
		},
		[]string{"status"},
	)

	AuditBatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "audit_batch_duration_seconds",
			Help: "Duration of one advisory batch",
		},
	)
)
