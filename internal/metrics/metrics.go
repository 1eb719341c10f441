// Package metrics implements Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// PacketsTotal counts packets flowing out of each stage.
	PacketsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "argus_pipeline_packets_total",
			Help: "Total number of packets emitted by a pipeline stage",
		},
		[]string{"job", "stage"},
	)

	// SamplesTotal counts parameter samples produced by transform stages.
	SamplesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "argus_pipeline_samples_total",
			Help: "Total number of parameter samples emitted by a pipeline stage",
		},
		[]string{"job", "stage"},
	)

	// BatchesTotal counts processed batches by final status.
	BatchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "argus_pipeline_batches_total",
			Help: "Total number of batches processed",
		},
		[]string{"job", "status"},
	)

	// StageErrorsTotal counts stage failures.
	StageErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "argus_pipeline_stage_errors_total",
			Help: "Total number of stage errors",
		},
		[]string{"job", "stage"},
	)

	// StageLatencySeconds measures per-batch stage latency.
	StageLatencySeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "argus_pipeline_stage_latency_seconds",
			Help:    "Latency of pipeline stages per batch in seconds",
			Buckets: prometheus.ExponentialBuckets(0.000001, 2, 20), // 1µs to ~1s
		},
		[]string{"job", "stage"},
	)

	// RunStatus tracks the current run state per job
	// (0=pending, 1=running, 2=success, 3=failed).
	RunStatus = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "argus_run_status",
			Help: "Current pipeline run status (0=pending, 1=running, 2=success, 3=failed)",
		},
		[]string{"job"},
	)
)

const (
	RunStatusPending = 0
	RunStatusRunning = 1
	RunStatusSuccess = 2
	RunStatusFailed  = 3
)
