// Package csvfile implements the CSV telemetry extractor. It re-ingests
// structured engineering-unit exports, as produced by ground segment tools or
// this pipeline's own CSV loader, rather than raw binary streams.
package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"stellab.xyz/argus/internal/log"
	"stellab.xyz/argus/internal/telemetry"
	"stellab.xyz/argus/pkg/plugin"
)

// DefaultBatchSize is the row count per batch when none is configured.
const DefaultBatchSize = 1000

// Config represents CSV extractor configuration.
type Config struct {
	Path             string   `mapstructure:"path"`
	BatchSize        int      `mapstructure:"batch_size"`
	TimeColumn       string   `mapstructure:"time_column"`
	APIDColumn       string   `mapstructure:"apid_column"`
	SeqCountColumn   string   `mapstructure:"seq_count_column"`
	ParameterColumns []string `mapstructure:"parameter_columns"`
	Delimiter        string   `mapstructure:"delimiter"`
	SourceID         string   `mapstructure:"source_id"`
}

// CSVExtractor reads parameter samples from a CSV file in row batches.
type CSVExtractor struct {
	name   string
	cfg    Config
	file   *os.File
	reader *csv.Reader

	timeIdx  int
	apidIdx  int
	seqIdx   int
	paramIdx map[string]int // parameter column name to index
	batch    int
	rows     int
}

// NewCSVExtractor creates a new CSV extractor.
func NewCSVExtractor() plugin.Extractor {
	return &CSVExtractor{name: "csv"}
}

// Name returns the plugin name.
func (e *CSVExtractor) Name() string {
	return e.name
}

// Init initializes the extractor with configuration.
func (e *CSVExtractor) Init(config map[string]any) error {
	if err := plugin.DecodeConfig(config, &e.cfg); err != nil {
		return err
	}
	if e.cfg.Path == "" {
		return fmt.Errorf("path is required")
	}
	if e.cfg.BatchSize <= 0 {
		e.cfg.BatchSize = DefaultBatchSize
	}
	if e.cfg.TimeColumn == "" {
		e.cfg.TimeColumn = "time"
	}
	if e.cfg.APIDColumn == "" {
		e.cfg.APIDColumn = "apid"
	}
	if e.cfg.SeqCountColumn == "" {
		e.cfg.SeqCountColumn = "seq_count"
	}
	if len(e.cfg.Delimiter) > 1 {
		return fmt.Errorf("delimiter must be a single character, got %q", e.cfg.Delimiter)
	}
	if e.cfg.SourceID == "" {
		e.cfg.SourceID = e.cfg.Path
	}
	return nil
}

// Open opens the file and resolves the column layout from the header row.
func (e *CSVExtractor) Open(ctx context.Context) error {
	file, err := os.Open(e.cfg.Path)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}

	reader := csv.NewReader(file)
	if e.cfg.Delimiter != "" {
		reader.Comma = rune(e.cfg.Delimiter[0])
	}

	header, err := reader.Read()
	if err != nil {
		file.Close()
		return fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, col := range header {
		index[col] = i
	}
	required := []string{e.cfg.TimeColumn, e.cfg.APIDColumn, e.cfg.SeqCountColumn}
	for _, col := range required {
		if _, ok := index[col]; !ok {
			file.Close()
			return fmt.Errorf("missing required column %q", col)
		}
	}
	e.timeIdx = index[e.cfg.TimeColumn]
	e.apidIdx = index[e.cfg.APIDColumn]
	e.seqIdx = index[e.cfg.SeqCountColumn]

	e.paramIdx = make(map[string]int)
	if len(e.cfg.ParameterColumns) > 0 {
		for _, col := range e.cfg.ParameterColumns {
			idx, ok := index[col]
			if !ok {
				file.Close()
				return fmt.Errorf("missing parameter column %q", col)
			}
			e.paramIdx[col] = idx
		}
	} else {
		// All columns beyond the required three are parameters.
		for i, col := range header {
			if i == e.timeIdx || i == e.apidIdx || i == e.seqIdx {
				continue
			}
			e.paramIdx[col] = i
		}
	}

	e.file = file
	e.reader = reader
	log.GetLogger().WithFields(map[string]interface{}{
		"path":       e.cfg.Path,
		"parameters": len(e.paramIdx),
	}).Info("csv extractor opened")
	return nil
}

// Next returns the next batch of rows as a dataset, or io.EOF at end of
// input. A trailing batch shorter than BatchSize is returned as-is; an empty
// batch is never returned.
func (e *CSVExtractor) Next(ctx context.Context) (*telemetry.Dataset, error) {
	if e.reader == nil {
		return nil, fmt.Errorf("extractor not opened")
	}

	ds := telemetry.NewDataset()
	rows := 0
	for rows < e.cfg.BatchSize {
		row, err := e.reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if err := e.addRow(ds, row); err != nil {
			return nil, err
		}
		rows++
	}
	if rows == 0 {
		return nil, io.EOF
	}

	ds.Metadata["source"] = e.cfg.SourceID
	ds.Metadata["rows"] = rows
	ds.Metadata["batch"] = e.batch
	e.batch++
	e.rows += rows
	return ds, nil
}

// addRow converts one CSV row into one sample per non-empty parameter cell.
// Cells that parse as numbers become numeric samples; anything else is kept
// as a string, already in engineering units.
func (e *CSVExtractor) addRow(ds *telemetry.Dataset, row []string) error {
	sampleTime, err := strconv.ParseFloat(row[e.timeIdx], 64)
	if err != nil {
		return fmt.Errorf("bad %s value %q: %w", e.cfg.TimeColumn, row[e.timeIdx], err)
	}
	apid, err := strconv.ParseUint(row[e.apidIdx], 10, 16)
	if err != nil {
		return fmt.Errorf("bad %s value %q: %w", e.cfg.APIDColumn, row[e.apidIdx], err)
	}
	seq, err := strconv.ParseUint(row[e.seqIdx], 10, 16)
	if err != nil {
		return fmt.Errorf("bad %s value %q: %w", e.cfg.SeqCountColumn, row[e.seqIdx], err)
	}

	for name, idx := range e.paramIdx {
		if idx >= len(row) || row[idx] == "" {
			continue
		}
		var raw telemetry.RawValue
		if f, err := strconv.ParseFloat(row[idx], 64); err == nil {
			raw = telemetry.RawFloat(f)
		} else {
			raw = telemetry.RawString(row[idx])
		}
		ds.AddParameter(telemetry.EngineeringParameter{
			Name:       name,
			APID:       uint16(apid),
			SeqCount:   uint16(seq),
			SampleTime: sampleTime,
			Raw:        raw,
			Eng:        telemetry.EngFromRaw(raw),
			Validity:   true,
		})
	}
	return nil
}

// Close closes the input file.
func (e *CSVExtractor) Close() error {
	if e.file == nil {
		return nil
	}
	log.GetLogger().WithFields(map[string]interface{}{
		"path": e.cfg.Path,
		"rows": e.rows,
	}).Info("csv extractor closed")
	return e.file.Close()
}
