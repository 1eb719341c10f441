package pipeline

import (
	"context"
	"errors"
	"io"
	"testing"

	"stellab.xyz/argus/internal/ccsds"
	"stellab.xyz/argus/internal/telemetry"
)

// Mock implementations for testing

type mockExtractor struct {
	batches   int
	perBatch  int
	produced  int
	openErr   error
	closed    bool
}

func (m *mockExtractor) Name() string                 { return "mock_extractor" }
func (m *mockExtractor) Init(cfg map[string]any) error { return nil }

func (m *mockExtractor) Open(ctx context.Context) error { return m.openErr }

func (m *mockExtractor) Next(ctx context.Context) (*telemetry.Dataset, error) {
	if m.produced >= m.batches {
		return nil, io.EOF
	}
	m.produced++
	ds := telemetry.NewDataset()
	for i := 0; i < m.perBatch; i++ {
		ds.AddPacket(&ccsds.Packet{Header: ccsds.PrimaryHeader{APID: 1, SeqCount: uint16(i)}})
	}
	return ds, nil
}

func (m *mockExtractor) Close() error {
	m.closed = true
	return nil
}

type mockTransformer struct {
	name   string
	calls  int
	failOn func(call int) error
	deps   []string
}

func (m *mockTransformer) Name() string                 { return m.name }
func (m *mockTransformer) Init(cfg map[string]any) error { return nil }
func (m *mockTransformer) Dependencies() []string        { return m.deps }

func (m *mockTransformer) Transform(ctx context.Context, ds *telemetry.Dataset) error {
	m.calls++
	for _, pkt := range ds.Packets {
		ds.AddParameter(telemetry.EngineeringParameter{
			Name: "P", SeqCount: pkt.SeqCount(), Raw: telemetry.RawUint(1),
		})
	}
	if m.failOn != nil {
		return m.failOn(m.calls)
	}
	return nil
}

type mockLoader struct {
	calls   int
	loadErr error
	closed  bool
}

func (m *mockLoader) Name() string                 { return "mock_loader" }
func (m *mockLoader) Init(cfg map[string]any) error { return nil }

func (m *mockLoader) Load(ctx context.Context, ds *telemetry.Dataset) error {
	m.calls++
	return m.loadErr
}

func (m *mockLoader) Close() error {
	m.closed = true
	return nil
}

func alwaysFail(error) func(int) error {
	return func(int) error { return errors.New("transform broke") }
}

func TestRunCleanPipeline(t *testing.T) {
	extractor := &mockExtractor{batches: 3, perBatch: 4}
	transformer := &mockTransformer{name: "decom"}
	loader := &mockLoader{}

	p := NewBuilder("clean").
		WithExtractor(extractor).
		WithTransformers(transformer).
		WithLoader(loader).
		Build()
	result := p.Run(context.Background())

	if result.Status != StatusSuccess {
		t.Fatalf("Status = %s, want SUCCESS", result.Status)
	}
	if result.Batches != 3 {
		t.Errorf("Batches = %d, want 3", result.Batches)
	}
	if result.TotalPackets != 12 {
		t.Errorf("TotalPackets = %d, want 12", result.TotalPackets)
	}
	if loader.calls != 3 {
		t.Errorf("loader calls = %d, want 3", loader.calls)
	}
	if !extractor.closed || !loader.closed {
		t.Error("stages not closed after run")
	}
	if result.RunID == "" {
		t.Error("missing run ID")
	}
}

func TestStopOnErrorAbortsAtFirstFailure(t *testing.T) {
	extractor := &mockExtractor{batches: 3, perBatch: 1}
	transformer := &mockTransformer{name: "decom", failOn: alwaysFail(nil)}
	loader := &mockLoader{}

	p := NewBuilder("strict").
		WithExtractor(extractor).
		WithTransformers(transformer).
		WithLoader(loader).
		WithStopOnError(true).
		Build()
	result := p.Run(context.Background())

	if result.Status != StatusFailed {
		t.Fatalf("Status = %s, want FAILED", result.Status)
	}
	if result.Batches != 0 {
		t.Errorf("Batches = %d, want 0", result.Batches)
	}
	if transformer.calls != 1 {
		t.Errorf("transformer calls = %d, want 1", transformer.calls)
	}
	if loader.calls != 0 {
		t.Errorf("loader calls = %d, want 0; failing batch must not reach the sink", loader.calls)
	}
	if len(result.Errors) != 1 {
		t.Errorf("errors = %d, want 1", len(result.Errors))
	}
}

func TestContinueOnErrorProcessesAllBatches(t *testing.T) {
	extractor := &mockExtractor{batches: 3, perBatch: 1}
	transformer := &mockTransformer{name: "decom", failOn: alwaysFail(nil)}
	loader := &mockLoader{}

	p := NewBuilder("lenient").
		WithExtractor(extractor).
		WithTransformers(transformer).
		WithLoader(loader).
		WithStopOnError(false).
		Build()
	result := p.Run(context.Background())

	if result.Status != StatusFailed {
		t.Fatalf("Status = %s, want FAILED (errors were recorded)", result.Status)
	}
	if result.Batches != 3 {
		t.Errorf("Batches = %d, want 3", result.Batches)
	}
	if len(result.Errors) != 3 {
		t.Errorf("errors = %d, want 3", len(result.Errors))
	}
	// The failing batch's output still reaches the sink.
	if loader.calls != 3 {
		t.Errorf("loader calls = %d, want 3", loader.calls)
	}
}

func TestMaxBatchesStopsEarlyWithSuccess(t *testing.T) {
	extractor := &mockExtractor{batches: 10, perBatch: 1}
	loader := &mockLoader{}

	p := NewBuilder("capped").
		WithExtractor(extractor).
		WithLoader(loader).
		WithMaxBatches(2).
		Build()
	result := p.Run(context.Background())

	if result.Status != StatusSuccess {
		t.Fatalf("Status = %s, want SUCCESS; max batches is a limit, not a failure", result.Status)
	}
	if result.Batches != 2 {
		t.Errorf("Batches = %d, want 2", result.Batches)
	}
	if loader.calls != 2 {
		t.Errorf("loader calls = %d, want 2", loader.calls)
	}
}

func TestDryRunSkipsLoader(t *testing.T) {
	extractor := &mockExtractor{batches: 2, perBatch: 1}
	transformer := &mockTransformer{name: "decom"}
	loader := &mockLoader{}

	p := NewBuilder("dry").
		WithExtractor(extractor).
		WithTransformers(transformer).
		WithLoader(loader).
		WithDryRun(true).
		Build()
	result := p.Run(context.Background())

	if result.Status != StatusSuccess {
		t.Fatalf("Status = %s, want SUCCESS", result.Status)
	}
	if transformer.calls != 2 {
		t.Errorf("transformer calls = %d, want 2; transforms still run in dry mode", transformer.calls)
	}
	if loader.calls != 0 {
		t.Errorf("loader calls = %d, want 0", loader.calls)
	}
}

func TestLoaderFailureWithStopOnError(t *testing.T) {
	extractor := &mockExtractor{batches: 3, perBatch: 1}
	loader := &mockLoader{loadErr: errors.New("disk full")}

	p := NewBuilder("sink-fail").
		WithExtractor(extractor).
		WithLoader(loader).
		WithStopOnError(true).
		Build()
	result := p.Run(context.Background())

	if result.Status != StatusFailed {
		t.Fatalf("Status = %s, want FAILED", result.Status)
	}
	if loader.calls != 1 {
		t.Errorf("loader calls = %d, want 1", loader.calls)
	}
}

func TestOpenFailureFailsRun(t *testing.T) {
	extractor := &mockExtractor{openErr: errors.New("no such file")}

	p := NewBuilder("bad-open").WithExtractor(extractor).WithDryRun(true).Build()
	result := p.Run(context.Background())

	if result.Status != StatusFailed {
		t.Fatalf("Status = %s, want FAILED", result.Status)
	}
	if len(result.Errors) != 1 {
		t.Errorf("errors = %d, want 1", len(result.Errors))
	}
}

func TestCancelledContextStopsBetweenBatches(t *testing.T) {
	extractor := &mockExtractor{batches: 5, perBatch: 1}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := NewBuilder("cancelled").WithExtractor(extractor).WithDryRun(true).Build()
	result := p.Run(ctx)

	if result.Status != StatusFailed {
		t.Fatalf("Status = %s, want FAILED", result.Status)
	}
	if result.Batches != 0 {
		t.Errorf("Batches = %d, want 0", result.Batches)
	}
}
