// Package csvfile implements a CSV loader writing one row per parameter
// sample. Batches append to the same file; the header is written once.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"stellab.xyz/argus/internal/log"
	"stellab.xyz/argus/internal/telemetry"
	"stellab.xyz/argus/pkg/plugin"
)

var header = []string{"parameter", "apid", "seq_count", "sample_time", "raw", "eng", "unit", "calibration"}

// Config represents CSV loader configuration.
type Config struct {
	Path string `mapstructure:"path"`
}

// CSVLoader writes samples to a CSV file.
type CSVLoader struct {
	name   string
	cfg    Config
	file   *os.File
	writer *csv.Writer
	rows   int
}

// NewCSVLoader creates a new CSV loader.
func NewCSVLoader() plugin.Loader {
	return &CSVLoader{name: "csv"}
}

// Name returns the plugin name.
func (l *CSVLoader) Name() string {
	return l.name
}

// Init opens the output file and writes the header.
func (l *CSVLoader) Init(config map[string]any) error {
	if err := plugin.DecodeConfig(config, &l.cfg); err != nil {
		return err
	}
	if l.cfg.Path == "" {
		return fmt.Errorf("path is required")
	}

	file, err := os.Create(l.cfg.Path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	l.file = file
	l.writer = csv.NewWriter(file)
	if err := l.writer.Write(header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

// Load appends one row per sample, parameters in sorted order and samples in
// time order, so output is deterministic for a given input.
func (l *CSVLoader) Load(ctx context.Context, ds *telemetry.Dataset) error {
	if l.writer == nil {
		return fmt.Errorf("loader not initialized")
	}

	for _, name := range ds.ParameterNames() {
		rec := ds.Parameters[name]
		for _, s := range rec.SortedSamples() {
			row := []string{
				s.Name,
				strconv.FormatUint(uint64(s.APID), 10),
				strconv.FormatUint(uint64(s.SeqCount), 10),
				strconv.FormatFloat(s.SampleTime, 'f', -1, 64),
				s.Raw.String(),
				s.Eng.String(),
				s.Unit,
				s.CalibrationID,
			}
			if err := l.writer.Write(row); err != nil {
				return fmt.Errorf("write row: %w", err)
			}
			l.rows++
		}
	}

	l.writer.Flush()
	return l.writer.Error()
}

// Close flushes and closes the output file.
func (l *CSVLoader) Close() error {
	if l.file == nil {
		return nil
	}
	l.writer.Flush()
	if err := l.writer.Error(); err != nil {
		l.file.Close()
		return err
	}
	log.GetLogger().WithFields(map[string]interface{}{
		"path": l.cfg.Path,
		"rows": l.rows,
	}).Info("csv loader closed")
	return l.file.Close()
}
