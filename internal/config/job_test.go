package config

import (
	"strings"
	"testing"
)

func validJob() *JobConfig {
	return &JobConfig{
		Name:   "housekeeping-ingest",
		Source: StageConfig{Name: "binary", Config: map[string]any{"path": "/data/tm.bin"}},
		Transformers: []StageConfig{
			{Name: "decom", Config: map[string]any{"mib_path": "/data/mib.yaml"}},
		},
		Loader: &StageConfig{Name: "console"},
	}
}

func TestJobValidate(t *testing.T) {
	if err := validJob().Validate(); err != nil {
		t.Fatalf("valid job rejected: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(*JobConfig)
		wantErr string
	}{
		{"missing name", func(jc *JobConfig) { jc.Name = "" }, "job name"},
		{"missing source", func(jc *JobConfig) { jc.Source.Name = "" }, "source name"},
		{"unnamed transformer", func(jc *JobConfig) {
			jc.Transformers = append(jc.Transformers, StageConfig{})
		}, "transformer[1]"},
		{"unnamed loader", func(jc *JobConfig) { jc.Loader = &StageConfig{} }, "loader"},
		{"no loader without dry run", func(jc *JobConfig) { jc.Loader = nil }, "loader is required"},
		{"negative max batches", func(jc *JobConfig) { jc.MaxBatches = -1 }, "max_batches"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			jc := validJob()
			tt.mutate(jc)
			err := jc.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("err = %v, want to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestDryRunNeedsNoLoader(t *testing.T) {
	jc := validJob()
	jc.Loader = nil
	jc.DryRun = true
	if err := jc.Validate(); err != nil {
		t.Errorf("dry run without loader rejected: %v", err)
	}
}

func TestParseJobConfigJSON(t *testing.T) {
	data := `{
		"name": "demo",
		"source": {"name": "binary", "config": {"path": "/x"}},
		"transformers": [{"name": "decom"}],
		"loader": {"name": "csv", "config": {"path": "/out.csv"}},
		"stop_on_error": true,
		"max_batches": 5
	}`

	jc, err := ParseJobConfig([]byte(data))
	if err != nil {
		t.Fatalf("ParseJobConfig failed: %v", err)
	}
	if jc.Name != "demo" || !jc.StopOnError || jc.MaxBatches != 5 {
		t.Errorf("parsed config mismatch: %+v", jc)
	}
	if jc.Loader.Name != "csv" {
		t.Errorf("loader = %q, want csv", jc.Loader.Name)
	}
}

func TestParseJobConfigAutoYAML(t *testing.T) {
	data := `
name: demo
source:
  name: binary
  config:
    path: /x
transformers:
  - name: decom
dry_run: true
`
	jc, err := ParseJobConfigAuto([]byte(data), "job.yaml")
	if err != nil {
		t.Fatalf("ParseJobConfigAuto failed: %v", err)
	}
	if !jc.DryRun || jc.Source.Name != "binary" {
		t.Errorf("parsed config mismatch: %+v", jc)
	}
}

func TestParseJobConfigRejectsInvalid(t *testing.T) {
	if _, err := ParseJobConfig([]byte(`{"name": ""}`)); err == nil {
		t.Error("expected validation error")
	}
	if _, err := ParseJobConfig([]byte(`not json`)); err == nil {
		t.Error("expected parse error")
	}
}
