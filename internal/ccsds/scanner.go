package ccsds

import (
	"bytes"
	"errors"
	"io"

	"stellab.xyz/argus/internal/core"
)

// SyncMarker is the CCSDS attached sync marker preceding each transfer unit
// in frame-synchronised streams.
var SyncMarker = []byte{0x1A, 0xCF, 0xFC, 0x1D}

// DefaultBatchSize is the packet count per batch when none is configured.
const DefaultBatchSize = 256

// ScanOptions configures a Scanner.
type ScanOptions struct {
	// BatchSize caps the number of packets per NextBatch call.
	BatchSize int

	// SecondaryHeaderLength is the mission-specific secondary header size
	// in bytes, applied to packets whose header flags a secondary header.
	SecondaryHeaderLength int

	// FrameSync enables scanning for SyncMarker before each packet.
	FrameSync bool

	// APIDs, when non-empty, is an allow-list: packets with other APIDs are
	// decoded to advance the cursor but discarded.
	APIDs []uint16
}

// ScanStats counts scanner activity for observability.
type ScanStats struct {
	Emitted   int // packets returned to the caller
	Filtered  int // packets decoded but dropped by the APID allow-list
	Skipped   int // bytes skipped over malformed headers or inter-marker gaps
	BytesRead int // cursor position at last read
}

// Scanner walks an in-memory byte buffer and yields CCSDS packets in batches.
//
// In plain mode packets are parsed back-to-back; a partial packet or fewer
// than 6 remaining bytes ends the scan cleanly. A header that fails strict
// validation advances the cursor by a single byte, so one corrupted packet
// does not poison the rest of the buffer.
//
// In frame-sync mode the scanner searches for SyncMarker before each packet
// and parses immediately after it; a buffer with no marker yields no packets.
type Scanner struct {
	buf   []byte
	pos   int
	opts  ScanOptions
	allow map[uint16]struct{}
	stats ScanStats
	done  bool
}

// NewScanner creates a Scanner over buf. The buffer is not copied; callers
// must not mutate it while scanning.
func NewScanner(buf []byte, opts ScanOptions) *Scanner {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	var allow map[uint16]struct{}
	if len(opts.APIDs) > 0 {
		allow = make(map[uint16]struct{}, len(opts.APIDs))
		for _, apid := range opts.APIDs {
			allow[apid] = struct{}{}
		}
	}
	return &Scanner{buf: buf, opts: opts, allow: allow}
}

// Stats returns a snapshot of scanner counters.
func (s *Scanner) Stats() ScanStats {
	st := s.stats
	st.BytesRead = s.pos
	return st
}

// Scan returns the next packet that passes the APID allow-list, or io.EOF
// when the buffer is exhausted.
func (s *Scanner) Scan() (*Packet, error) {
	for {
		pkt, err := s.next()
		if err != nil {
			return nil, err
		}
		if s.allow != nil {
			if _, ok := s.allow[pkt.APID()]; !ok {
				s.stats.Filtered++
				continue
			}
		}
		s.stats.Emitted++
		return pkt, nil
	}
}

// NextBatch collects up to BatchSize packets. The final batch may be short;
// an empty batch is never returned, io.EOF is reported instead.
func (s *Scanner) NextBatch() ([]*Packet, error) {
	if s.done {
		return nil, io.EOF
	}
	batch := make([]*Packet, 0, s.opts.BatchSize)
	for len(batch) < s.opts.BatchSize {
		pkt, err := s.Scan()
		if err != nil {
			s.done = true
			if len(batch) > 0 {
				return batch, nil
			}
			return nil, err
		}
		batch = append(batch, pkt)
	}
	return batch, nil
}

// next advances the cursor to the next parseable packet regardless of the
// APID filter.
func (s *Scanner) next() (*Packet, error) {
	for {
		if s.opts.FrameSync {
			idx := bytes.Index(s.buf[s.pos:], SyncMarker)
			if idx < 0 {
				s.pos = len(s.buf)
				return nil, io.EOF
			}
			s.stats.Skipped += idx
			s.pos += idx + len(SyncMarker)
		}

		if len(s.buf)-s.pos < PrimaryHeaderLength {
			return nil, io.EOF
		}

		header, err := ParseHeader(s.buf[s.pos:])
		if err != nil || header.Validate() != nil {
			if s.opts.FrameSync {
				// Bad bytes after a marker; resume at the next marker.
				continue
			}
			s.pos++
			s.stats.Skipped++
			continue
		}

		pkt, consumed, err := ParsePacket(s.buf, s.pos, s.opts.SecondaryHeaderLength)
		if err != nil {
			if errors.Is(err, core.ErrTruncatedPacket) {
				// A partial packet at the tail is end of stream, not corruption.
				return nil, io.EOF
			}
			return nil, err
		}
		s.pos += consumed
		return pkt, nil
	}
}
