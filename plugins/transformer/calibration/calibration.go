// Package calibration implements the calibration transformer: it converts
// decommutated raw values to engineering units per the mission information
// base.
package calibration

import (
	"context"
	"fmt"

	"stellab.xyz/argus/internal/calib"
	"stellab.xyz/argus/internal/log"
	"stellab.xyz/argus/internal/mib"
	"stellab.xyz/argus/internal/telemetry"
	"stellab.xyz/argus/pkg/plugin"
)

// Config represents calibration transformer configuration.
type Config struct {
	MIBPath string `mapstructure:"mib_path"`
}

// CalibrationTransformer applies per-parameter calibration rules.
type CalibrationTransformer struct {
	name   string
	cfg    Config
	engine *calib.Engine
}

// NewCalibrationTransformer creates a new calibration transformer.
func NewCalibrationTransformer() plugin.Transformer {
	return &CalibrationTransformer{name: "calibration"}
}

// Name returns the plugin name.
func (t *CalibrationTransformer) Name() string {
	return t.name
}

// Dependencies declares that decommutation must run first: calibration
// operates on parameter records, not packets.
func (t *CalibrationTransformer) Dependencies() []string {
	return []string{"decom"}
}

// Init loads the MIB and compiles the calibration entries.
func (t *CalibrationTransformer) Init(config map[string]any) error {
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
	engine, err := calib.NewEngine(m.Calibrations)
	if err != nil {
		return err
	}
	t.engine = engine

	log.GetLogger().WithFields(map[string]interface{}{
		"mib":     t.cfg.MIBPath,
		"entries": engine.Entries(),
	}).Info("calibration transformer initialized")
	return nil
}

// Transform calibrates every record with a matching entry.
func (t *CalibrationTransformer) Transform(ctx context.Context, ds *telemetry.Dataset) error {
	t.engine.Apply(ds)
	return nil
}
