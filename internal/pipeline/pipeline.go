// Package pipeline implements the batch processing pipeline engine: one
// extractor, an ordered transformer chain, and an optional loader, driven
// synchronously one batch at a time.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"

	"stellab.xyz/argus/internal/eventbus"
	"stellab.xyz/argus/internal/log"
	"stellab.xyz/argus/internal/metrics"
	"stellab.xyz/argus/internal/telemetry"
	"stellab.xyz/argus/pkg/plugin"
)

// Status is the run state.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusRunning Status = "RUNNING"
	StatusSuccess Status = "SUCCESS"
	StatusFailed  Status = "FAILED"
)

// StageResult records one stage execution on one batch.
type StageResult struct {
	Stage      string
	BatchIndex int
	Elapsed    time.Duration
	RecordsIn  int
	RecordsOut int
	Err        error
}

// StageError locates a stage failure within a run.
type StageError struct {
	Stage string
	Batch int
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s failed on batch %d: %v", e.Stage, e.Batch, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// Result is the run summary.
type Result struct {
	RunID        string
	Job          string
	Status       Status
	Elapsed      time.Duration
	Batches      int
	TotalPackets int
	TotalSamples int
	StageResults []StageResult
	Errors       []*StageError
}

// OK reports whether the run finished without errors.
func (r *Result) OK() bool { return r.Status == StatusSuccess }

// Summary renders a human-readable run report.
func (r *Result) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Job %q: %s\n", r.Job, r.Status)
	fmt.Fprintf(&b, "  run_id    : %s\n", r.RunID)
	fmt.Fprintf(&b, "  elapsed   : %.3fs\n", r.Elapsed.Seconds())
	fmt.Fprintf(&b, "  batches   : %d\n", r.Batches)
	fmt.Fprintf(&b, "  packets   : %d\n", r.TotalPackets)
	fmt.Fprintf(&b, "  samples   : %d\n", r.TotalSamples)
	fmt.Fprintf(&b, "  errors    : %d\n", len(r.Errors))
	for _, err := range r.Errors {
		fmt.Fprintf(&b, "    - %v\n", err)
	}
	return b.String()
}

// Config contains pipeline configuration.
type Config struct {
	Name         string
	Extractor    plugin.Extractor
	Transformers []plugin.Transformer
	Loader       plugin.Loader

	// StopOnError aborts the run at the first stage failure; otherwise errors
	// accumulate and the failing batch's output still reaches the loader.
	StopOnError bool

	// MaxBatches ends the run with SUCCESS after that many batches; 0 means
	// run to end of input.
	MaxBatches int

	// DryRun suppresses loader calls while still running extract/transform.
	DryRun bool

	// Bus receives lifecycle events. Optional.
	Bus eventbus.EventBus
}

// Pipeline drives one run. Not reusable; build a new one per run.
type Pipeline struct {
	cfg     Config
	metrics *Metrics
}

// New creates a pipeline.
func New(cfg Config) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		metrics: NewMetrics(cfg.Name),
	}
}

// Run executes the pipeline synchronously and returns a result summary.
// Cancellation is checked between batches only; a batch in flight always
// completes.
func (p *Pipeline) Run(ctx context.Context) *Result {
	t0 := time.Now()
	result := &Result{
		RunID:  uuid.NewString(),
		Job:    p.cfg.Name,
		Status: StatusRunning,
	}
	logger := log.GetLogger().WithFields(map[string]interface{}{
		"job":    p.cfg.Name,
		"run_id": result.RunID,
	})

	logger.WithField("dry_run", p.cfg.DryRun).Info("pipeline starting")
	metrics.RunStatus.WithLabelValues(p.cfg.Name).Set(metrics.RunStatusRunning)
	p.publish(eventbus.TopicRunStart, result.RunID, p.cfg.Name)

	if err := p.cfg.Extractor.Open(ctx); err != nil {
		p.recordError(result, &StageError{Stage: p.cfg.Extractor.Name(), Batch: 0, Err: err}, logger)
		p.finish(result, t0, logger)
		return result
	}
	defer p.cfg.Extractor.Close()
	if p.cfg.Loader != nil {
		defer p.cfg.Loader.Close()
	}

	batch := 0
	for {
		if err := ctx.Err(); err != nil {
			p.recordError(result, &StageError{Stage: "orchestrator", Batch: batch, Err: err}, logger)
			break
		}

		ds, err := p.nextBatch(ctx, result, batch)
		if err != nil {
			if !errors.Is(err, io.EOF) {
				p.recordError(result, &StageError{Stage: p.cfg.Extractor.Name(), Batch: batch, Err: err}, logger)
			}
			break
		}
		logger.WithFields(map[string]interface{}{
			"batch":   batch,
			"packets": ds.Len(),
		}).Debug("batch extracted")
		p.publish(eventbus.TopicBatchExtracted, result.RunID, batch)

		stopped := p.runTransformers(ctx, ds, batch, result, logger)
		if stopped {
			break
		}
		p.publish(eventbus.TopicBatchTransformed, result.RunID, batch)

		if p.cfg.Loader != nil && !p.cfg.DryRun {
			if stopped := p.runLoader(ctx, ds, batch, result, logger); stopped {
				break
			}
			p.publish(eventbus.TopicBatchLoaded, result.RunID, batch)
		}

		batch++
		result.Batches = batch
		result.TotalPackets += ds.Len()
		result.TotalSamples += ds.SampleCount()
		p.metrics.BatchesProcessed.Add(1)
		p.metrics.PacketsTotal.Add(uint64(ds.Len()))
		p.metrics.SamplesTotal.Add(uint64(ds.SampleCount()))
		metrics.BatchesTotal.WithLabelValues(p.cfg.Name, "ok").Inc()

		if p.cfg.MaxBatches > 0 && batch >= p.cfg.MaxBatches {
			logger.WithField("max_batches", p.cfg.MaxBatches).Info("max batch count reached")
			break
		}
	}

	p.finish(result, t0, logger)
	return result
}

// nextBatch pulls and times the extraction stage.
func (p *Pipeline) nextBatch(ctx context.Context, result *Result, batch int) (*telemetry.Dataset, error) {
	start := time.Now()
	ds, err := p.cfg.Extractor.Next(ctx)
	elapsed := time.Since(start)
	if err != nil {
		return nil, err
	}

	result.StageResults = append(result.StageResults, StageResult{
		Stage:      p.cfg.Extractor.Name(),
		BatchIndex: batch,
		Elapsed:    elapsed,
		RecordsOut: ds.Len(),
	})
	metrics.StageLatencySeconds.WithLabelValues(p.cfg.Name, p.cfg.Extractor.Name()).Observe(elapsed.Seconds())
	metrics.PacketsTotal.WithLabelValues(p.cfg.Name, p.cfg.Extractor.Name()).Add(float64(ds.Len()))
	return ds, nil
}

// runTransformers applies the chain in order. On a failure with StopOnError
// the remaining transformers are skipped and the run stops; without it the
// chain carries on so the batch still reaches the loader in whatever state it
// got to. Returns true when the run must stop.
func (p *Pipeline) runTransformers(ctx context.Context, ds *telemetry.Dataset, batch int, result *Result, logger log.Logger) bool {
	for _, tr := range p.cfg.Transformers {
		in := ds.SampleCount()
		start := time.Now()
		err := tr.Transform(ctx, ds)
		elapsed := time.Since(start)

		result.StageResults = append(result.StageResults, StageResult{
			Stage:      tr.Name(),
			BatchIndex: batch,
			Elapsed:    elapsed,
			RecordsIn:  in,
			RecordsOut: ds.SampleCount(),
			Err:        err,
		})
		metrics.StageLatencySeconds.WithLabelValues(p.cfg.Name, tr.Name()).Observe(elapsed.Seconds())
		metrics.SamplesTotal.WithLabelValues(p.cfg.Name, tr.Name()).Add(float64(ds.SampleCount()))

		if err != nil {
			p.recordError(result, &StageError{Stage: tr.Name(), Batch: batch, Err: err}, logger)
			if p.cfg.StopOnError {
				metrics.BatchesTotal.WithLabelValues(p.cfg.Name, "error").Inc()
				return true
			}
		}
	}
	return false
}

// runLoader hands the batch to the loader. Returns true when the run must
// stop.
func (p *Pipeline) runLoader(ctx context.Context, ds *telemetry.Dataset, batch int, result *Result, logger log.Logger) bool {
	start := time.Now()
	err := p.cfg.Loader.Load(ctx, ds)
	elapsed := time.Since(start)

	result.StageResults = append(result.StageResults, StageResult{
		Stage:      p.cfg.Loader.Name(),
		BatchIndex: batch,
		Elapsed:    elapsed,
		RecordsIn:  ds.SampleCount(),
		RecordsOut: ds.SampleCount(),
		Err:        err,
	})
	metrics.StageLatencySeconds.WithLabelValues(p.cfg.Name, p.cfg.Loader.Name()).Observe(elapsed.Seconds())

	if err != nil {
		p.recordError(result, &StageError{Stage: p.cfg.Loader.Name(), Batch: batch, Err: err}, logger)
		if p.cfg.StopOnError {
			metrics.BatchesTotal.WithLabelValues(p.cfg.Name, "error").Inc()
			return true
		}
	}
	return false
}

func (p *Pipeline) recordError(result *Result, stageErr *StageError, logger log.Logger) {
	result.Errors = append(result.Errors, stageErr)
	p.metrics.StageErrors.Add(1)
	metrics.StageErrorsTotal.WithLabelValues(p.cfg.Name, stageErr.Stage).Inc()
	p.publish(eventbus.TopicStageError, result.RunID, stageErr.Error())
	logger.WithError(stageErr.Err).WithFields(map[string]interface{}{
		"stage": stageErr.Stage,
		"batch": stageErr.Batch,
	}).Error("stage failed")
}

func (p *Pipeline) finish(result *Result, t0 time.Time, logger log.Logger) {
	result.Elapsed = time.Since(t0)
	if len(result.Errors) == 0 {
		result.Status = StatusSuccess
		metrics.RunStatus.WithLabelValues(p.cfg.Name).Set(metrics.RunStatusSuccess)
	} else {
		result.Status = StatusFailed
		metrics.RunStatus.WithLabelValues(p.cfg.Name).Set(metrics.RunStatusFailed)
	}
	p.publish(eventbus.TopicRunComplete, result.RunID, string(result.Status))

	logger.WithFields(map[string]interface{}{
		"status":  string(result.Status),
		"batches": result.Batches,
		"packets": result.TotalPackets,
		"errors":  len(result.Errors),
		"elapsed": result.Elapsed.Seconds(),
	}).Info("pipeline finished")
}

func (p *Pipeline) publish(topic, key string, payload interface{}) {
	if p.cfg.Bus == nil {
		return
	}
	if err := p.cfg.Bus.Publish(&eventbus.Event{Topic: topic, Key: key, Payload: payload}); err != nil {
		log.GetLogger().WithError(err).Debugf("event publish failed for topic %s", topic)
	}
}

// Stats returns a snapshot of the run counters.
func (p *Pipeline) Stats() Stats {
	return Stats{
		BatchesProcessed: p.metrics.BatchesProcessed.Load(),
		PacketsTotal:     p.metrics.PacketsTotal.Load(),
		SamplesTotal:     p.metrics.SamplesTotal.Load(),
		StageErrors:      p.metrics.StageErrors.Load(),
	}
}

// Stats represents pipeline statistics.
type Stats struct {
	BatchesProcessed uint64
	PacketsTotal     uint64
	SamplesTotal     uint64
	StageErrors      uint64
}
