// Package config handles global configuration loading using viper.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// GlobalConfig is the top-level static configuration. Maps to the `argus:`
// root key in YAML; env vars use the ARGUS_ prefix via the key replacer
// (key "argus.log.level" → env "ARGUS_LOG_LEVEL").
type GlobalConfig struct {
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	DataDir string        `mapstructure:"data_dir"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `mapstructure:"level"`  // debug / info / warn / error
	Format string        `mapstructure:"format"` // json / text
	File   FileLogConfig `mapstructure:"file"`
}

// FileLogConfig configures file log output with rotation.
type FileLogConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Path       string `mapstructure:"path"`
	MaxSizeMB  int    `mapstructure:"max_size_mb"`
	MaxAgeDays int    `mapstructure:"max_age_days"`
	MaxBackups int    `mapstructure:"max_backups"`
	Compress   bool   `mapstructure:"compress"`
}

// MetricsConfig contains Prometheus metrics settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Listen  string `mapstructure:"listen"`
	Path    string `mapstructure:"path"`
}

// configRoot is the wrapper matching the YAML structure `argus: ...`.
type configRoot struct {
	Argus GlobalConfig `mapstructure:"argus"`
}

// Load loads global configuration from file, applying env overrides and
// defaults.
func Load(path string) (*GlobalConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	var root configRoot
	if err := v.Unmarshal(&root); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg := root.Argus

	if err := cfg.ValidateAndApplyDefaults(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// Default returns the configuration used when no config file is given.
func Default() *GlobalConfig {
	cfg := &GlobalConfig{}
	cfg.ValidateAndApplyDefaults() //nolint:errcheck // zero config validates
	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("argus.log.level", "info")
	v.SetDefault("argus.log.format", "text")
	v.SetDefault("argus.log.file.enabled", false)
	v.SetDefault("argus.log.file.path", "/var/log/argus/argus.log")
	v.SetDefault("argus.log.file.max_size_mb", 100)
	v.SetDefault("argus.log.file.max_age_days", 30)
	v.SetDefault("argus.log.file.max_backups", 5)
	v.SetDefault("argus.log.file.compress", true)

	v.SetDefault("argus.metrics.enabled", false)
	v.SetDefault("argus.metrics.listen", ":9464")
	v.SetDefault("argus.metrics.path", "/metrics")

	v.SetDefault("argus.data_dir", "/var/lib/argus")
}

// ValidateAndApplyDefaults validates the configuration and fills runtime
// defaults for fields viper could not cover (e.g. a zero-value config).
func (cfg *GlobalConfig) ValidateAndApplyDefaults() error {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[cfg.Log.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug/info/warn/error)", cfg.Log.Level)
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
	if cfg.Log.Format != "json" && cfg.Log.Format != "text" {
		return fmt.Errorf("invalid log format: %s (must be json/text)", cfg.Log.Format)
	}
	if cfg.Metrics.Listen == "" {
		cfg.Metrics.Listen = ":9464"
	}
	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
	return nil
}
