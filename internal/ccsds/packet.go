package ccsds

import (
	"fmt"
	"time"

	"stellab.xyz/argus/internal/core"
)

// Packet is a fully parsed CCSDS telemetry packet with ground metadata.
// The invariant len(SecondaryHeader)+len(UserData) == Header.PacketDataLength()
// holds for every packet built by ParsePacket or NewPacket.
type Packet struct {
	Header          PrimaryHeader
	SecondaryHeader []byte
	UserData        []byte

	// SourceTime is the on-board packet time in TAI seconds since J2000,
	// valid only when HasSourceTime is set.
	SourceTime    float64
	HasSourceTime bool

	// ReceiptTime is the ground receipt timestamp; zero when unknown.
	ReceiptTime time.Time

	// SourceID identifies the originating spacecraft or ground station.
	SourceID string
}

// NewPacket builds a packet from already-split fields, enforcing the data
// field length invariant.
func NewPacket(header PrimaryHeader, secondaryHeader, userData []byte) (*Packet, error) {
	got := len(secondaryHeader) + len(userData)
	if got != header.PacketDataLength() {
		return nil, fmt.Errorf("%w: header declares %d bytes, got %d",
			core.ErrDataLengthMismatch, header.PacketDataLength(), got)
	}
	return &Packet{
		Header:          header,
		SecondaryHeader: secondaryHeader,
		UserData:        userData,
	}, nil
}

// APID is a shortcut to the Application Process Identifier.
func (p *Packet) APID() uint16 { return p.Header.APID }

// SeqCount is a shortcut to the packet sequence count.
func (p *Packet) SeqCount() uint16 { return p.Header.SeqCount }

// ParsePacket reads one packet from buf starting at offset and returns it
// along with the number of bytes consumed.
//
// The secondary header length is mission-specific (CCSDS does not standardise
// the format at the Space Packet layer; common values are 4 for CDS short and
// 10 for CUC with fine time) and is only honoured when the header flags a
// secondary header and secHdrLen > 0.
//
// Returns core.ErrTruncatedPacket when the header declares more bytes than
// remain in buf; callers scanning a stream should treat that as end of data
// and wait for more, not as corruption.
func ParsePacket(buf []byte, offset, secHdrLen int) (*Packet, int, error) {
	if offset < 0 || offset > len(buf) {
		return nil, 0, fmt.Errorf("%w: offset %d outside buffer of %d bytes",
			core.ErrTruncatedPacket, offset, len(buf))
	}
	header, err := ParseHeader(buf[offset:])
	if err != nil {
		return nil, 0, err
	}

	dataLen := header.PacketDataLength()
	dataStart := offset + PrimaryHeaderLength
	if dataStart+dataLen > len(buf) {
		return nil, 0, fmt.Errorf("%w: need %d data bytes, %d remain",
			core.ErrTruncatedPacket, dataLen, len(buf)-dataStart)
	}

	dataField := make([]byte, dataLen)
	copy(dataField, buf[dataStart:dataStart+dataLen])

	var secHdr, userData []byte
	if header.HasSecondaryHeader && secHdrLen > 0 {
		n := min(secHdrLen, dataLen)
		secHdr = dataField[:n]
		userData = dataField[n:]
	} else {
		userData = dataField
	}

	return &Packet{
		Header:          header,
		SecondaryHeader: secHdr,
		UserData:        userData,
	}, header.TotalLength(), nil
}
