// Package decom extracts named parameters from packet user data using a
// static per-APID definition table, mirroring the packet definitions of an
// MIB (Mission Information Base) in ESA/NASA ground systems.
package decom

import (
	"encoding/binary"
	"fmt"
	"math"
	"strings"

	"stellab.xyz/argus/internal/ccsds"
	"stellab.xyz/argus/internal/core"
	"stellab.xyz/argus/internal/telemetry"
)

// ParameterDefinition locates one parameter inside a specific APID's user
// data field. Definitions are fixed at engine construction and never mutated.
type ParameterDefinition struct {
	Name         string
	APID         uint16
	ByteOffset   int
	BitLength    int // 8/16/32/64 for numeric types
	Type         telemetry.ParameterType
	LittleEndian bool
	Unit         string
	Description  string
}

// ByteCount is the number of user-data bytes the field occupies.
func (d ParameterDefinition) ByteCount() int {
	return (d.BitLength + 7) / 8
}

// Validate rejects definitions the engine cannot evaluate.
func (d ParameterDefinition) Validate() error {
	if d.Name == "" {
		return fmt.Errorf("%w: parameter name is required", core.ErrConfigInvalid)
	}
	if d.APID > ccsds.MaxAPID {
		return fmt.Errorf("%w: parameter %q apid 0x%X exceeds 11 bits",
			core.ErrConfigInvalid, d.Name, d.APID)
	}
	if d.ByteOffset < 0 {
		return fmt.Errorf("%w: parameter %q has negative byte offset",
			core.ErrConfigInvalid, d.Name)
	}
	if d.BitLength <= 0 {
		return fmt.Errorf("%w: parameter %q has non-positive bit length",
			core.ErrConfigInvalid, d.Name)
	}
	if d.Type.Numeric() {
		switch d.BitLength {
		case 8, 16, 32, 64:
		default:
			return fmt.Errorf("%w: parameter %q: %s fields must be 8/16/32/64 bits, got %d",
				core.ErrConfigInvalid, d.Name, d.Type, d.BitLength)
		}
	}
	return nil
}

// Options tunes engine behaviour.
type Options struct {
	// StrictAPIDs fails the batch on a packet whose APID has no definitions
	// instead of skipping it. Meant for validation runs where every APID
	// must be known.
	StrictAPIDs bool
}

// Engine holds the read-only APID index. Safe for concurrent readers.
type Engine struct {
	byAPID map[uint16][]ParameterDefinition
	opts   Options
}

// NewEngine validates the definitions and builds the APID index once.
func NewEngine(defs []ParameterDefinition, opts Options) (*Engine, error) {
	byAPID := make(map[uint16][]ParameterDefinition)
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			return nil, err
		}
		byAPID[def.APID] = append(byAPID[def.APID], def)
	}
	return &Engine{byAPID: byAPID, opts: opts}, nil
}

// Definitions returns the definition count, for logging.
func (e *Engine) Definitions() int {
	n := 0
	for _, defs := range e.byAPID {
		n += len(defs)
	}
	return n
}

// Apply decommutates every packet in the batch, appending one sample per
// applicable definition. Fields that do not fit in a packet's user data are
// skipped silently: short packets are expected operational reality.
func (e *Engine) Apply(ds *telemetry.Dataset) error {
	for _, pkt := range ds.Packets {
		defs, ok := e.byAPID[pkt.APID()]
		if !ok {
			if e.opts.StrictAPIDs {
				return fmt.Errorf("%w 0x%03X", core.ErrUnknownAPID, pkt.APID())
			}
			continue
		}
		for _, def := range defs {
			sample, err := e.extract(pkt, def)
			if err != nil {
				// Short packets are expected operational reality; the field
				// is simply absent from this packet instance.
				continue
			}
			ds.AddParameter(sample)
		}
	}
	return nil
}

func (e *Engine) extract(pkt *ccsds.Packet, def ParameterDefinition) (telemetry.EngineeringParameter, error) {
	end := def.ByteOffset + def.ByteCount()
	if end > len(pkt.UserData) {
		return telemetry.EngineeringParameter{}, fmt.Errorf("%w: %s needs bytes [%d:%d), packet carries %d",
			core.ErrShortUserData, def.Name, def.ByteOffset, end, len(pkt.UserData))
	}
	raw := decodeBytes(pkt.UserData[def.ByteOffset:end], def)

	return telemetry.EngineeringParameter{
		Name:       def.Name,
		APID:       pkt.APID(),
		SeqCount:   pkt.SeqCount(),
		SampleTime: sampleTime(pkt),
		Raw:        raw,
		Eng:        telemetry.EngFromRaw(raw),
		Unit:       def.Unit,
		Validity:   true,
	}, nil
}

// decodeBytes interprets a field per its declared type and endianness.
// Type/width pairs outside the table decode as a plain unsigned integer,
// matching the permissive fallback of legacy ground decom tables.
func decodeBytes(b []byte, def ParameterDefinition) telemetry.RawValue {
	var order binary.ByteOrder = binary.BigEndian
	if def.LittleEndian {
		order = binary.LittleEndian
	}

	switch def.Type {
	case telemetry.TypeUint:
		switch def.BitLength {
		case 8:
			return telemetry.RawUint(uint64(b[0]))
		case 16:
			return telemetry.RawUint(uint64(order.Uint16(b)))
		case 32:
			return telemetry.RawUint(uint64(order.Uint32(b)))
		case 64:
			return telemetry.RawUint(order.Uint64(b))
		}
	case telemetry.TypeInt:
		switch def.BitLength {
		case 8:
			return telemetry.RawInt(int64(int8(b[0])))
		case 16:
			return telemetry.RawInt(int64(int16(order.Uint16(b))))
		case 32:
			return telemetry.RawInt(int64(int32(order.Uint32(b))))
		case 64:
			return telemetry.RawInt(int64(order.Uint64(b)))
		}
	case telemetry.TypeFloat:
		if def.BitLength == 32 {
			return telemetry.RawFloat(float64(math.Float32frombits(order.Uint32(b))))
		}
	case telemetry.TypeDouble:
		if def.BitLength == 64 {
			return telemetry.RawFloat(math.Float64frombits(order.Uint64(b)))
		}
	case telemetry.TypeBoolean:
		return telemetry.RawBool(b[0] != 0)
	case telemetry.TypeString:
		return telemetry.RawString(strings.TrimRight(string(b), "\x00"))
	case telemetry.TypeBinary:
		out := make([]byte, len(b))
		copy(out, b)
		return telemetry.RawBytes(out)
	}

	return telemetry.RawUint(uintFallback(b, order))
}

// uintFallback reads an arbitrary-width big/little-endian unsigned integer.
func uintFallback(b []byte, order binary.ByteOrder) uint64 {
	var v uint64
	if order == binary.LittleEndian {
		for i := len(b) - 1; i >= 0; i-- {
			v = v<<8 | uint64(b[i])
		}
		return v
	}
	for _, by := range b {
		v = v<<8 | uint64(by)
	}
	return v
}

// sampleTime prefers the packet's on-board time; without one, the sequence
// count stands in as an ordering-only surrogate.
func sampleTime(pkt *ccsds.Packet) float64 {
	if pkt.HasSourceTime {
		return pkt.SourceTime
	}
	return float64(pkt.SeqCount())
}
