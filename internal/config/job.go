package config

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// StageConfig names a plugin and carries its opaque per-plugin settings.
type StageConfig struct {
	Name   string         `json:"name" yaml:"name"`
	Config map[string]any `json:"config" yaml:"config"`
}

// JobConfig is one processing run: a source, an ordered transformer chain,
// and an optional loader.
type JobConfig struct {
	Name         string        `json:"name" yaml:"name"`
	Source       StageConfig   `json:"source" yaml:"source"`
	Transformers []StageConfig `json:"transformers" yaml:"transformers"`
	Loader       *StageConfig  `json:"loader" yaml:"loader"`

	// StopOnError aborts the run on the first failing batch instead of
	// carrying on with the remaining batches.
	StopOnError bool `json:"stop_on_error" yaml:"stop_on_error"`

	// MaxBatches ends the run successfully after that many batches; 0 means
	// run to end of input.
	MaxBatches int `json:"max_batches" yaml:"max_batches"`

	// DryRun skips the loader while still running extraction and transforms.
	DryRun bool `json:"dry_run" yaml:"dry_run"`
}

// Validate validates job configuration and applies defaults.
func (jc *JobConfig) Validate() error {
	if jc.Name == "" {
		return fmt.Errorf("job name is required")
	}

	if jc.Source.Name == "" {
		return fmt.Errorf("source name is required")
	}

	for i, tr := range jc.Transformers {
		if tr.Name == "" {
			return fmt.Errorf("transformer[%d]: name is required", i)
		}
	}

	if jc.Loader != nil && jc.Loader.Name == "" {
		return fmt.Errorf("loader: name is required")
	}
	if jc.Loader == nil && !jc.DryRun {
		return fmt.Errorf("a loader is required unless dry_run is set")
	}

	if jc.MaxBatches < 0 {
		return fmt.Errorf("max_batches must be >= 0, got %d", jc.MaxBatches)
	}

	return nil
}

// ParseJobConfig parses job configuration from JSON.
func ParseJobConfig(data []byte) (*JobConfig, error) {
	var jc JobConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return nil, fmt.Errorf("failed to parse job config: %w", err)
	}

	if err := jc.Validate(); err != nil {
		return nil, err
	}

	return &jc, nil
}

// ParseJobConfigAuto parses job configuration, detecting JSON or YAML from
// the file extension (.json, .yaml, .yml). Unknown extensions fall back to
// JSON.
func ParseJobConfigAuto(data []byte, filename string) (*JobConfig, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		var jc JobConfig
		if err := yaml.Unmarshal(data, &jc); err != nil {
			return nil, fmt.Errorf("failed to parse job config: %w", err)
		}
		if err := jc.Validate(); err != nil {
			return nil, err
		}
		return &jc, nil
	default:
		return ParseJobConfig(data)
	}
}
