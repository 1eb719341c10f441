// Package console implements the console debug loader.
// Outputs batch contents to stdout in human-readable format.
package console

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"

	"stellab.xyz/argus/internal/log"
	"stellab.xyz/argus/internal/telemetry"
	"stellab.xyz/argus/pkg/plugin"
)

// ConsoleLoader outputs batches to console for debugging.
type ConsoleLoader struct {
	name        string
	format      string // "json" or "text"
	samples     bool   // print individual samples, not just the batch summary
	loadedCount atomic.Uint64
}

// Config represents console loader configuration.
type Config struct {
	Format  string `mapstructure:"format"`  // "json" or "text", default "text"
	Samples bool   `mapstructure:"samples"` // print every sample
}

// NewConsoleLoader creates a new console loader.
func NewConsoleLoader() plugin.Loader {
	return &ConsoleLoader{
		name:   "console",
		format: "text",
	}
}

// Name returns the plugin name.
func (l *ConsoleLoader) Name() string {
	return l.name
}

// Init initializes the loader with configuration.
func (l *ConsoleLoader) Init(config map[string]any) error {
	var cfg Config
	if err := plugin.DecodeConfig(config, &cfg); err != nil {
		return err
	}
	if cfg.Format != "" {
		if cfg.Format != "json" && cfg.Format != "text" {
			return fmt.Errorf("invalid format %q, must be json or text", cfg.Format)
		}
		l.format = cfg.Format
	}
	l.samples = cfg.Samples
	return nil
}

// Load outputs a batch to console.
func (l *ConsoleLoader) Load(ctx context.Context, ds *telemetry.Dataset) error {
	l.loadedCount.Add(1)
	if l.format == "json" {
		return l.loadJSON(ds)
	}
	return l.loadText(ds)
}

func (l *ConsoleLoader) loadJSON(ds *telemetry.Dataset) error {
	records := make(map[string]any, len(ds.Parameters))
	for _, name := range ds.ParameterNames() {
		rec := ds.Parameters[name]
		samples := make([]map[string]any, 0, len(rec.Samples))
		for _, s := range rec.Samples {
			samples = append(samples, map[string]any{
				"time": s.SampleTime,
				"raw":  s.Raw.String(),
				"eng":  s.Eng.String(),
				"unit": s.Unit,
			})
		}
		records[name] = samples
	}
	output := map[string]any{
		"packets":    ds.Len(),
		"parameters": records,
		"metadata":   ds.Metadata,
	}

	data, err := json.Marshal(output)
	if err != nil {
		return fmt.Errorf("json marshal failed: %w", err)
	}
	fmt.Println(string(data))
	return nil
}

func (l *ConsoleLoader) loadText(ds *telemetry.Dataset) error {
	fmt.Printf("batch: %d packets, %d parameters, %d samples\n",
		ds.Len(), len(ds.Parameters), ds.SampleCount())
	if !l.samples {
		return nil
	}
	for _, name := range ds.ParameterNames() {
		rec := ds.Parameters[name]
		for _, s := range rec.SortedSamples() {
			fmt.Printf("  %-24s t=%.3f raw=%s eng=%s %s\n",
				name, s.SampleTime, s.Raw.String(), s.Eng.String(), s.Unit)
		}
	}
	return nil
}

// Close logs the final batch count.
func (l *ConsoleLoader) Close() error {
	log.GetLogger().WithField("batches", l.loadedCount.Load()).Info("console loader closed")
	return nil
}
