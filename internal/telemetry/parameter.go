// Package telemetry defines the in-memory data model flowing between pipeline
// stages: raw and engineering-unit parameter samples, per-parameter records,
// and the Dataset batch container.
package telemetry

import (
	"encoding/hex"
	"fmt"
	"sort"
	"strconv"
)

// ParameterType declares how a field's bytes are interpreted during
// decommutation. The set is closed by the wire format.
type ParameterType string

const (
	TypeUint       ParameterType = "uint"
	TypeInt        ParameterType = "int"
	TypeFloat      ParameterType = "float"
	TypeDouble     ParameterType = "double"
	TypeBoolean    ParameterType = "boolean"
	TypeEnumerated ParameterType = "enumerated"
	TypeString     ParameterType = "string"
	TypeBinary     ParameterType = "binary"
)

// Numeric reports whether the type requires a fixed 8/16/32/64 bit width.
func (t ParameterType) Numeric() bool {
	switch t {
	case TypeUint, TypeInt, TypeFloat, TypeDouble, TypeEnumerated:
		return true
	}
	return false
}

// ValueKind tags a RawValue variant.
type ValueKind uint8

const (
	KindUint ValueKind = iota
	KindInt
	KindFloat
	KindBool
	KindString
	KindBytes
)

// RawValue is a decoded pre-calibration field value. The kind set is closed,
// so dispatch is a tag switch rather than open polymorphism.
type RawValue struct {
	Kind  ValueKind
	Uint  uint64
	Int   int64
	Float float64
	Bool  bool
	Str   string
	Bytes []byte
}

func RawUint(v uint64) RawValue   { return RawValue{Kind: KindUint, Uint: v} }
func RawInt(v int64) RawValue     { return RawValue{Kind: KindInt, Int: v} }
func RawFloat(v float64) RawValue { return RawValue{Kind: KindFloat, Float: v} }
func RawBool(v bool) RawValue     { return RawValue{Kind: KindBool, Bool: v} }
func RawString(v string) RawValue { return RawValue{Kind: KindString, Str: v} }
func RawBytes(v []byte) RawValue  { return RawValue{Kind: KindBytes, Bytes: v} }

// AsFloat coerces the value to a float64 where a numeric reading exists.
// Numeric strings parse; opaque binary does not coerce.
func (v RawValue) AsFloat() (float64, bool) {
	switch v.Kind {
	case KindUint:
		return float64(v.Uint), true
	case KindInt:
		return float64(v.Int), true
	case KindFloat:
		return v.Float, true
	case KindBool:
		if v.Bool {
			return 1, true
		}
		return 0, true
	case KindString:
		f, err := strconv.ParseFloat(v.Str, 64)
		return f, err == nil
	}
	return 0, false
}

func (v RawValue) String() string {
	switch v.Kind {
	case KindUint:
		return strconv.FormatUint(v.Uint, 10)
	case KindInt:
		return strconv.FormatInt(v.Int, 10)
	case KindFloat:
		return strconv.FormatFloat(v.Float, 'g', -1, 64)
	case KindBool:
		return strconv.FormatBool(v.Bool)
	case KindString:
		return v.Str
	case KindBytes:
		return hex.EncodeToString(v.Bytes)
	}
	return fmt.Sprintf("RawValue(kind=%d)", v.Kind)
}

// EngKind tags an EngValue variant.
type EngKind uint8

const (
	EngNumber EngKind = iota
	EngString
	EngBool
)

// EngValue is an engineering-unit value: numeric or string (booleans are kept
// distinct until a consumer flattens them).
type EngValue struct {
	Kind EngKind
	Num  float64
	Str  string
	Bool bool
}

func EngNum(v float64) EngValue { return EngValue{Kind: EngNumber, Num: v} }
func EngStr(v string) EngValue  { return EngValue{Kind: EngString, Str: v} }
func EngBoolean(v bool) EngValue {
	return EngValue{Kind: EngBool, Bool: v}
}

// AsFloat coerces the engineering value to a float64 where possible.
func (v EngValue) AsFloat() (float64, bool) {
	switch v.Kind {
	case EngNumber:
		return v.Num, true
	case EngBool:
		if v.Bool {
			return 1, true
		}
		return 0, true
	case EngString:
		f, err := strconv.ParseFloat(v.Str, 64)
		return f, err == nil
	}
	return 0, false
}

func (v EngValue) String() string {
	switch v.Kind {
	case EngNumber:
		return strconv.FormatFloat(v.Num, 'g', -1, 64)
	case EngString:
		return v.Str
	case EngBool:
		return strconv.FormatBool(v.Bool)
	}
	return fmt.Sprintf("EngValue(kind=%d)", v.Kind)
}

// EngFromRaw is the pre-calibration engineering value: the raw value itself,
// except opaque binary which is hex-encoded since engineering values are
// numeric-or-string.
func EngFromRaw(raw RawValue) EngValue {
	switch raw.Kind {
	case KindUint:
		return EngNum(float64(raw.Uint))
	case KindInt:
		return EngNum(float64(raw.Int))
	case KindFloat:
		return EngNum(raw.Float)
	case KindBool:
		return EngBoolean(raw.Bool)
	case KindString:
		return EngStr(raw.Str)
	case KindBytes:
		return EngStr(hex.EncodeToString(raw.Bytes))
	}
	return EngValue{}
}

// EngineeringParameter is one calibrated (or to-be-calibrated) sample.
// Samples are immutable: calibration produces a new sample, never edits one.
type EngineeringParameter struct {
	Name       string
	APID       uint16
	SeqCount   uint16
	SampleTime float64 // TAI seconds since J2000; seq-count surrogate when the packet carries no time

	Raw RawValue
	Eng EngValue

	Unit          string
	Validity      bool
	OutOfLimit    bool
	AlarmLevel    uint8 // 0..3
	CalibrationID string
}

// ParameterRecord is the named, time-ordered sample sequence for a single
// parameter within one batch. Insertion order need not be time order.
type ParameterRecord struct {
	Name    string
	Unit    string
	Samples []EngineeringParameter
}

// Count returns the number of samples in the record.
func (r *ParameterRecord) Count() int { return len(r.Samples) }

// TimeRange returns the min and max sample times; ok is false for an empty
// record.
func (r *ParameterRecord) TimeRange() (minT, maxT float64, ok bool) {
	if len(r.Samples) == 0 {
		return 0, 0, false
	}
	minT, maxT = r.Samples[0].SampleTime, r.Samples[0].SampleTime
	for _, s := range r.Samples[1:] {
		if s.SampleTime < minT {
			minT = s.SampleTime
		}
		if s.SampleTime > maxT {
			maxT = s.SampleTime
		}
	}
	return minT, maxT, true
}

// SortedSamples returns a copy of the samples ordered by sample time.
func (r *ParameterRecord) SortedSamples() []EngineeringParameter {
	out := make([]EngineeringParameter, len(r.Samples))
	copy(out, r.Samples)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SampleTime < out[j].SampleTime
	})
	return out
}

// WithSamples rebuilds the record around a new sample list, keeping identity
// fields. Stages replace records rather than mutating sample slices in place.
func (r *ParameterRecord) WithSamples(samples []EngineeringParameter) *ParameterRecord {
	return &ParameterRecord{Name: r.Name, Unit: r.Unit, Samples: samples}
}
