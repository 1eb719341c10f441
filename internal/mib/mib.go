// Package mib loads the mission information base: the parameter definition
// and calibration tables that drive decommutation, from a YAML file.
package mib

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"stellab.xyz/argus/internal/calib"
	"stellab.xyz/argus/internal/core"
	"stellab.xyz/argus/internal/decom"
	"stellab.xyz/argus/internal/telemetry"
)

// parameterSpec is the on-disk shape of one parameter definition.
type parameterSpec struct {
	Name         string `yaml:"name"`
	APID         uint16 `yaml:"apid"`
	ByteOffset   int    `yaml:"byte_offset"`
	BitLength    int    `yaml:"bit_length"`
	Type         string `yaml:"type"`
	LittleEndian bool   `yaml:"little_endian"`
	Unit         string `yaml:"unit"`
	Description  string `yaml:"description"`
}

// calibrationSpec is the on-disk shape of one calibration entry.
type calibrationSpec struct {
	Parameter    string    `yaml:"parameter"`
	Method       string    `yaml:"method"`
	Coefficients []float64 `yaml:"coefficients"`
	TableRaw     []float64 `yaml:"table_raw"`
	TableEng     []float64 `yaml:"table_eng"`
	Unit         string    `yaml:"unit"`
}

type document struct {
	Mission      string            `yaml:"mission"`
	Parameters   []parameterSpec   `yaml:"parameters"`
	Calibrations []calibrationSpec `yaml:"calibrations"`
}

// MIB is a loaded, validated mission information base.
type MIB struct {
	Mission      string
	Parameters   []decom.ParameterDefinition
	Calibrations []calib.Entry
}

// Load reads and validates a MIB YAML file.
func Load(path string) (*MIB, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mib: %w", err)
	}
	return Parse(data)
}

// Parse validates a MIB document in memory.
func Parse(data []byte) (*MIB, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: mib yaml: %v", core.ErrConfigInvalid, err)
	}
	if len(doc.Parameters) == 0 {
		return nil, fmt.Errorf("%w: mib defines no parameters", core.ErrConfigInvalid)
	}

	m := &MIB{Mission: doc.Mission}
	seen := make(map[string]struct{}, len(doc.Parameters))
	for _, p := range doc.Parameters {
		def := decom.ParameterDefinition{
			Name:         p.Name,
			APID:         p.APID,
			ByteOffset:   p.ByteOffset,
			BitLength:    p.BitLength,
			Type:         telemetry.ParameterType(p.Type),
			LittleEndian: p.LittleEndian,
			Unit:         p.Unit,
			Description:  p.Description,
		}
		if err := def.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[def.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate parameter %q", core.ErrConfigInvalid, def.Name)
		}
		seen[def.Name] = struct{}{}
		m.Parameters = append(m.Parameters, def)
	}

	for _, c := range doc.Calibrations {
		entry := calib.Entry{
			Parameter:    c.Parameter,
			Method:       calib.Method(c.Method),
			Coefficients: c.Coefficients,
			TableRaw:     c.TableRaw,
			TableEng:     c.TableEng,
			Unit:         c.Unit,
		}
		if err := entry.Validate(); err != nil {
			return nil, err
		}
		if _, ok := seen[entry.Parameter]; !ok {
			return nil, fmt.Errorf("%w: calibration %q references an undefined parameter",
				core.ErrConfigInvalid, entry.Parameter)
		}
		m.Calibrations = append(m.Calibrations, entry)
	}

	return m, nil
}
