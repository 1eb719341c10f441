// Package calib converts raw digital values to engineering units using
// per-parameter polynomial or piecewise-linear table transforms.
package calib

import (
	"fmt"

	"gonum.org/v1/gonum/interp"

	"stellab.xyz/argus/internal/core"
	"stellab.xyz/argus/internal/telemetry"
)

// Method names a calibration transform.
type Method string

const (
	MethodPolynomial Method = "polynomial"
	MethodTable      Method = "table"
	MethodIdentity   Method = "identity"
)

// Entry is one parameter's calibration rule. Entries are static configuration
// shared read-only across all samples of a run.
type Entry struct {
	Parameter string
	Method    Method

	// Coefficients are polynomial coefficients low-to-high order:
	// eng = c0 + c1*raw + c2*raw^2 + ...
	Coefficients []float64

	// TableRaw/TableEng are breakpoint pairs for table interpolation.
	// TableRaw must be strictly increasing.
	TableRaw []float64
	TableEng []float64

	// Unit overrides the sample unit after calibration.
	Unit string
}

// Validate rejects entries the engine cannot evaluate.
func (e Entry) Validate() error {
	if e.Parameter == "" {
		return fmt.Errorf("%w: calibration entry without parameter name", core.ErrConfigInvalid)
	}
	switch e.Method {
	case MethodPolynomial, MethodIdentity, "":
	case MethodTable:
		if len(e.TableRaw) != len(e.TableEng) {
			return fmt.Errorf("%w: calibration %q: %d raw vs %d eng breakpoints",
				core.ErrConfigInvalid, e.Parameter, len(e.TableRaw), len(e.TableEng))
		}
		for i := 1; i < len(e.TableRaw); i++ {
			if e.TableRaw[i] <= e.TableRaw[i-1] {
				return fmt.Errorf("%w: calibration %q: raw breakpoints must be strictly increasing at index %d",
					core.ErrConfigInvalid, e.Parameter, i)
			}
		}
	default:
		return fmt.Errorf("%w: calibration %q: unknown method %q",
			core.ErrConfigInvalid, e.Parameter, e.Method)
	}
	return nil
}

// transform is a compiled calibration ready to evaluate.
type transform struct {
	entry Entry
	table *interp.PiecewiseLinear // non-nil for table entries with >=2 points
}

// calibrate produces the calibrated copy of one sample. A raw value with no
// numeric reading cannot be run through a numeric transform.
func (t *transform) calibrate(sample telemetry.EngineeringParameter) (telemetry.EngineeringParameter, error) {
	raw, ok := sample.Raw.AsFloat()
	if !ok {
		return sample, fmt.Errorf("%w: %s raw value %q is not numeric",
			core.ErrCalibrationTypeMismatch, sample.Name, sample.Raw.String())
	}
	out := sample
	out.Eng = telemetry.EngNum(t.apply(raw))
	out.CalibrationID = string(t.entry.Method)
	if t.entry.Unit != "" {
		out.Unit = t.entry.Unit
	}
	return out, nil
}

func (t *transform) apply(raw float64) float64 {
	switch t.entry.Method {
	case MethodPolynomial:
		return polyval(t.entry.Coefficients, raw)
	case MethodTable:
		xs, ys := t.entry.TableRaw, t.entry.TableEng
		if len(xs) == 0 {
			return raw
		}
		// Clamped extrapolation: hold the end values outside the table.
		if raw <= xs[0] {
			return ys[0]
		}
		if raw >= xs[len(xs)-1] {
			return ys[len(ys)-1]
		}
		return t.table.Predict(raw)
	}
	return raw
}

// polyval evaluates coefficients low-to-high order via Horner's rule.
// Empty coefficients behave as identity.
func polyval(coeffs []float64, x float64) float64 {
	if len(coeffs) == 0 {
		return x
	}
	acc := 0.0
	for i := len(coeffs) - 1; i >= 0; i-- {
		acc = acc*x + coeffs[i]
	}
	return acc
}

// Engine holds the read-only name index. Safe for concurrent readers.
type Engine struct {
	byName map[string]*transform
}

// NewEngine validates and compiles the entries once.
func NewEngine(entries []Entry) (*Engine, error) {
	byName := make(map[string]*transform, len(entries))
	for _, entry := range entries {
		if err := entry.Validate(); err != nil {
			return nil, err
		}
		t := &transform{entry: entry}
		if entry.Method == MethodTable && len(entry.TableRaw) >= 2 {
			var pl interp.PiecewiseLinear
			if err := pl.Fit(entry.TableRaw, entry.TableEng); err != nil {
				return nil, fmt.Errorf("%w: calibration %q: %v",
					core.ErrConfigInvalid, entry.Parameter, err)
			}
			t.table = &pl
		}
		byName[entry.Parameter] = t
	}
	return &Engine{byName: byName}, nil
}

// Entries returns the entry count, for logging.
func (e *Engine) Entries() int { return len(e.byName) }

// Apply rewrites the engineering values of every record that has a matching
// entry. Records without an entry pass through untouched; samples whose raw
// value has no numeric reading pass through uncalibrated. Sample lists are
// rebuilt, never edited in place.
func (e *Engine) Apply(ds *telemetry.Dataset) {
	for name, rec := range ds.Parameters {
		t, ok := e.byName[name]
		if !ok {
			continue
		}

		calibrated := make([]telemetry.EngineeringParameter, 0, len(rec.Samples))
		for _, sample := range rec.Samples {
			out, err := t.calibrate(sample)
			if err != nil {
				// Type mismatch: the sample passes through uncalibrated.
				calibrated = append(calibrated, sample)
				continue
			}
			calibrated = append(calibrated, out)
		}

		next := rec.WithSamples(calibrated)
		if t.entry.Unit != "" {
			next.Unit = t.entry.Unit
		}
		ds.Parameters[name] = next
	}
}
