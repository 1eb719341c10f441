// Package decom implements the decommutation transformer: it extracts named
// parameter samples from packet user data using the mission information base.
package decom

import (
	"context"
	"fmt"

	"stellab.xyz/argus/internal/decom"
	"stellab.xyz/argus/internal/log"
	"stellab.xyz/argus/internal/mib"
	"stellab.xyz/argus/internal/telemetry"
	"stellab.xyz/argus/pkg/plugin"
)

// Config represents decom transformer configuration.
type Config struct {
	MIBPath     string `mapstructure:"mib_path"`
	StrictAPIDs bool   `mapstructure:"strict_apids"`
}

// DecomTransformer extracts parameter samples from packets.
type DecomTransformer struct {
	name   string
	cfg    Config
	engine *decom.Engine
}

// NewDecomTransformer creates a new decom transformer.
func NewDecomTransformer() plugin.Transformer {
	return &DecomTransformer{name: "decom"}
}

// Name returns the plugin name.
func (t *DecomTransformer) Name() string {
	return t.name
}

// Init loads the MIB and builds the APID index.
func (t *DecomTransformer) Init(config map[string]any) error {
	if err := plugin.DecodeConfig(config, &t.cfg); err != nil {
		return err
	}
	if t.cfg.MIBPath == "" {
		return fmt.Errorf("mib_path is required")
	}

	m, err := mib.Load(t.cfg.MIBPath)
	if err != nil {
		return err
	}
	engine, err := decom.NewEngine(m.Parameters, decom.Options{StrictAPIDs: t.cfg.StrictAPIDs})
	if err != nil {
		return err
	}
	t.engine = engine

	log.GetLogger().WithFields(map[string]interface{}{
		"mib":         t.cfg.MIBPath,
		"definitions": engine.Definitions(),
	}).Info("decom transformer initialized")
	return nil
}

// Transform decommutates every packet in the batch.
func (t *DecomTransformer) Transform(ctx context.Context, ds *telemetry.Dataset) error {
	return t.engine.Apply(ds)
}
