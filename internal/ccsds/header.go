// Package ccsds implements the CCSDS Space Packet wire format: the 6-byte
// primary header codec, packet parsing with mission-specific secondary
// header splitting, TM transfer frame headers, and a stream scanner that
// recovers packets from raw byte buffers with optional frame-sync search.
//
// Reference: CCSDS 133.0-B-2 (Space Packet Protocol).
package ccsds

import (
	"encoding/binary"
	"fmt"

	"stellab.xyz/argus/internal/core"
)

const (
	// PrimaryHeaderLength is the fixed size of the primary header in bytes.
	PrimaryHeaderLength = 6

	// MaxAPID is the largest Application Process Identifier (11 bits).
	MaxAPID = 0x7FF

	// MaxSeqCount is the largest packet sequence count (14 bits).
	MaxSeqCount = 0x3FFF

	// APIDIdle marks idle packets per CCSDS convention.
	APIDIdle = 0x7FF
)

// PacketType distinguishes telemetry from telecommand packets.
type PacketType uint8

const (
	TypeTelemetry   PacketType = 0
	TypeTelecommand PacketType = 1
)

// SequenceFlags is the 2-bit segmentation indicator. Segmentation is modeled
// but packets are never reassembled here.
type SequenceFlags uint8

const (
	SeqContinuation SequenceFlags = 0b00
	SeqFirstSegment SequenceFlags = 0b01
	SeqLastSegment  SequenceFlags = 0b10
	SeqUnsegmented  SequenceFlags = 0b11
)

func (f SequenceFlags) String() string {
	switch f {
	case SeqContinuation:
		return "continuation"
	case SeqFirstSegment:
		return "first"
	case SeqLastSegment:
		return "last"
	case SeqUnsegmented:
		return "unsegmented"
	}
	return fmt.Sprintf("SequenceFlags(%d)", uint8(f))
}

// PrimaryHeader is the 6-byte CCSDS Space Packet primary header.
//
// Bit layout (48 bits, three big-endian 16-bit words):
//
//	[3]  version     : always 0b000
//	[1]  type        : 0=telemetry, 1=telecommand
//	[1]  sec hdr     : secondary header present flag
//	[11] apid        : Application Process Identifier
//	[2]  seq flags   : sequence flags
//	[14] seq count   : packet sequence count (0..16383)
//	[16] data length : data field length minus one (octets)
type PrimaryHeader struct {
	Version            uint8
	Type               PacketType
	HasSecondaryHeader bool
	APID               uint16
	SeqFlags           SequenceFlags
	SeqCount           uint16
	DataLength         uint16
}

// ParseHeader decodes a primary header from the first 6 bytes of buf.
func ParseHeader(buf []byte) (PrimaryHeader, error) {
	if len(buf) < PrimaryHeaderLength {
		return PrimaryHeader{}, fmt.Errorf("%w: need %d bytes, got %d",
			core.ErrMalformedHeader, PrimaryHeaderLength, len(buf))
	}
	w0 := binary.BigEndian.Uint16(buf[0:2])
	w1 := binary.BigEndian.Uint16(buf[2:4])
	w2 := binary.BigEndian.Uint16(buf[4:6])
	return PrimaryHeader{
		Version:            uint8(w0 >> 13 & 0x07),
		Type:               PacketType(w0 >> 12 & 0x01),
		HasSecondaryHeader: w0>>11&0x01 == 1,
		APID:               w0 & 0x07FF,
		SeqFlags:           SequenceFlags(w1 >> 14 & 0x03),
		SeqCount:           w1 & 0x3FFF,
		DataLength:         w2,
	}, nil
}

// Bytes serialises the header back to its 6-byte wire form. Field values are
// masked to their bit widths, so Bytes(ParseHeader(b)) is byte-exact for any
// well-formed b.
func (h PrimaryHeader) Bytes() []byte {
	var secHdr uint16
	if h.HasSecondaryHeader {
		secHdr = 1
	}
	w0 := uint16(h.Version&0x07)<<13 |
		uint16(h.Type&0x01)<<12 |
		secHdr<<11 |
		h.APID&0x07FF
	w1 := uint16(h.SeqFlags&0x03)<<14 | h.SeqCount&0x3FFF
	out := make([]byte, PrimaryHeaderLength)
	binary.BigEndian.PutUint16(out[0:2], w0)
	binary.BigEndian.PutUint16(out[2:4], w1)
	binary.BigEndian.PutUint16(out[4:6], h.DataLength)
	return out
}

// Validate reports whether the header is acceptable under strict CCSDS rules.
// The version number is fixed at 0b000 by CCSDS 133.0-B-2; anything else means
// the bytes under the cursor are not a packet boundary.
func (h PrimaryHeader) Validate() error {
	if h.Version != 0 {
		return fmt.Errorf("%w: version %d, want 0", core.ErrMalformedHeader, h.Version)
	}
	return nil
}

// PacketDataLength is the actual data field length in bytes (DataLength + 1).
func (h PrimaryHeader) PacketDataLength() int {
	return int(h.DataLength) + 1
}

// TotalLength is the full packet length in bytes, header included.
func (h PrimaryHeader) TotalLength() int {
	return PrimaryHeaderLength + h.PacketDataLength()
}
