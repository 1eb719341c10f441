package ccsds

import (
	"encoding/binary"
	"fmt"
	"time"

	"stellab.xyz/argus/internal/core"
)

// FrameHeaderLength is the fixed size of a TM transfer frame primary header.
//
// Reference: CCSDS 132.0-B-3 (TM Space Data Link Protocol).
const FrameHeaderLength = 6

// FrameQuality classifies a decoded transfer frame.
type FrameQuality uint8

const (
	FrameGood FrameQuality = iota
	FrameDegraded
	FrameBad
	FrameMissing
)

// FrameHeader is the 6-byte TM Transfer Frame primary header.
type FrameHeader struct {
	Version                  uint8
	SpacecraftID             uint16
	VirtualChannelID         uint8
	OCFFlag                  bool
	MasterChannelFrameCount  uint8
	VirtualChannelFrameCount uint8
	HasSecondaryHeader       bool
	SyncFlag                 bool
	PacketOrderFlag          bool
	SegmentLengthID          uint8
	FirstHeaderPointer       uint16
}

// ParseFrameHeader decodes a TM transfer frame primary header from the first
// 6 bytes of buf.
func ParseFrameHeader(buf []byte) (FrameHeader, error) {
	if len(buf) < FrameHeaderLength {
		return FrameHeader{}, fmt.Errorf("%w: frame header needs %d bytes, got %d",
			core.ErrMalformedHeader, FrameHeaderLength, len(buf))
	}
	w0 := binary.BigEndian.Uint16(buf[0:2])
	w3 := binary.BigEndian.Uint16(buf[4:6])
	return FrameHeader{
		Version:                  uint8(w0 >> 14 & 0x03),
		SpacecraftID:             w0 >> 4 & 0x3FF,
		VirtualChannelID:         uint8(w0 >> 1 & 0x07),
		OCFFlag:                  w0&0x01 == 1,
		MasterChannelFrameCount:  buf[2],
		VirtualChannelFrameCount: buf[3],
		HasSecondaryHeader:       w3>>15&0x01 == 1,
		SyncFlag:                 w3>>14&0x01 == 1,
		PacketOrderFlag:          w3>>13&0x01 == 1,
		SegmentLengthID:          uint8(w3 >> 11 & 0x03),
		FirstHeaderPointer:       w3 & 0x07FF,
	}, nil
}

// Bytes serialises the frame header back to its 6-byte wire form.
func (h FrameHeader) Bytes() []byte {
	var ocf uint16
	if h.OCFFlag {
		ocf = 1
	}
	w0 := uint16(h.Version&0x03)<<14 |
		(h.SpacecraftID&0x3FF)<<4 |
		uint16(h.VirtualChannelID&0x07)<<1 |
		ocf
	var secHdr, sync, order uint16
	if h.HasSecondaryHeader {
		secHdr = 1
	}
	if h.SyncFlag {
		sync = 1
	}
	if h.PacketOrderFlag {
		order = 1
	}
	w3 := secHdr<<15 | sync<<14 | order<<13 |
		uint16(h.SegmentLengthID&0x03)<<11 |
		h.FirstHeaderPointer&0x07FF
	out := make([]byte, FrameHeaderLength)
	binary.BigEndian.PutUint16(out[0:2], w0)
	out[2] = h.MasterChannelFrameCount
	out[3] = h.VirtualChannelFrameCount
	binary.BigEndian.PutUint16(out[4:6], w3)
	return out
}

// Frame is a decoded TM transfer frame. Frames are carriers for packet data;
// de-interleaving the packet zone into Space Packets is left to the ground
// system feeding this pipeline, which hands over frame-stripped streams.
type Frame struct {
	Header      FrameHeader
	DataField   []byte
	Quality     FrameQuality
	ReceiptTime time.Time
	StationID   string
}

// IsGood reports whether the frame decoded without quality flags.
func (f *Frame) IsGood() bool { return f.Quality == FrameGood }
