// Package pipeline implements pipeline construction.
package pipeline

import (
	"stellab.xyz/argus/internal/eventbus"
	"stellab.xyz/argus/pkg/plugin"
)

// Builder provides a fluent interface for building pipelines.
// This is an alternative to using Config directly.
type Builder struct {
	config Config
}

// NewBuilder creates a new pipeline builder.
func NewBuilder(name string) *Builder {
	return &Builder{config: Config{Name: name}}
}

// WithExtractor sets the batch source.
func (b *Builder) WithExtractor(e plugin.Extractor) *Builder {
	b.config.Extractor = e
	return b
}

// WithTransformers sets the transformer chain, in execution order.
func (b *Builder) WithTransformers(transformers ...plugin.Transformer) *Builder {
	b.config.Transformers = transformers
	return b
}

// AddTransformer appends one transformer to the chain.
func (b *Builder) AddTransformer(t plugin.Transformer) *Builder {
	b.config.Transformers = append(b.config.Transformers, t)
	return b
}

// WithLoader sets the batch sink.
func (b *Builder) WithLoader(l plugin.Loader) *Builder {
	b.config.Loader = l
	return b
}

// WithStopOnError sets the error policy.
func (b *Builder) WithStopOnError(stop bool) *Builder {
	b.config.StopOnError = stop
	return b
}

// WithMaxBatches caps the number of processed batches.
func (b *Builder) WithMaxBatches(n int) *Builder {
	b.config.MaxBatches = n
	return b
}

// WithDryRun suppresses loader calls.
func (b *Builder) WithDryRun(dry bool) *Builder {
	b.config.DryRun = dry
	return b
}

// WithBus sets the lifecycle event bus.
func (b *Builder) WithBus(bus eventbus.EventBus) *Builder {
	b.config.Bus = bus
	return b
}

// Build creates the pipeline.
func (b *Builder) Build() *Pipeline {
	return New(b.config)
}
