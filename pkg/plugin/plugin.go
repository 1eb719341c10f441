// Package plugin defines the stage plugin interfaces and the typed factory
// registry built-in plugins register into.
package plugin

import (
	"context"

	"stellab.xyz/argus/internal/telemetry"
)

// Plugin is the base interface for all stage plugins.
type Plugin interface {
	Name() string
	Init(cfg map[string]any) error
}

// Extractor produces telemetry batches from an input source. Next returns
// io.EOF when the source is exhausted; it never returns an empty dataset.
type Extractor interface {
	Plugin
	Open(ctx context.Context) error
	Next(ctx context.Context) (*telemetry.Dataset, error)
	Close() error
}

// Transformer mutates a batch in place: decommutation, calibration,
// filtering.
type Transformer interface {
	Plugin
	Transform(ctx context.Context, ds *telemetry.Dataset) error
}

// Loader writes a processed batch to its destination.
type Loader interface {
	Plugin
	Load(ctx context.Context, ds *telemetry.Dataset) error
	Close() error
}

// DependencyAware is an optional interface transformers implement to declare
// which other transformers must run before them in the chain.
type DependencyAware interface {
	Dependencies() []string
}
