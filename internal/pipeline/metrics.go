package pipeline

import (
	"sync/atomic"
)

// Metrics contains per-run metrics counters.
type Metrics struct {
	Job string

	BatchesProcessed atomic.Uint64
	PacketsTotal     atomic.Uint64
	SamplesTotal     atomic.Uint64
	StageErrors      atomic.Uint64
}

// NewMetrics creates a new metrics instance.
func NewMetrics(job string) *Metrics {
	return &Metrics{Job: job}
}

// Reset resets all counters to zero.
func (m *Metrics) Reset() {
	m.BatchesProcessed.Store(0)
	m.PacketsTotal.Store(0)
	m.SamplesTotal.Store(0)
	m.StageErrors.Store(0)
}
