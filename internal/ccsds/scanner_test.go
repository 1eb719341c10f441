package ccsds

import (
	"errors"
	"io"
	"testing"
)

// stream concatenates n well-formed packets with two data bytes each.
func stream(n int) []byte {
	var buf []byte
	for i := 0; i < n; i++ {
		buf = append(buf, buildPacket(uint16(i%3+1), uint16(i), false, []byte{byte(i), 0xFF})...)
	}
	return buf
}

func collect(t *testing.T, s *Scanner) [][]*Packet {
	t.Helper()
	var batches [][]*Packet
	for {
		batch, err := s.NextBatch()
		if errors.Is(err, io.EOF) {
			return batches
		}
		if err != nil {
			t.Fatalf("NextBatch failed: %v", err)
		}
		if len(batch) == 0 {
			t.Fatal("NextBatch returned an empty batch")
		}
		batches = append(batches, batch)
	}
}

func TestScannerBatchCounts(t *testing.T) {
	tests := []struct {
		name        string
		packets     int
		batchSize   int
		wantBatches int
	}{
		{"exact multiple", 10, 5, 2},
		{"short final batch", 7, 3, 3},
		{"single batch", 3, 256, 1},
		{"batch size one", 4, 1, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewScanner(stream(tt.packets), ScanOptions{BatchSize: tt.batchSize})
			batches := collect(t, s)

			if len(batches) != tt.wantBatches {
				t.Fatalf("got %d batches, want %d", len(batches), tt.wantBatches)
			}
			total := 0
			for _, b := range batches {
				total += len(b)
			}
			if total != tt.packets {
				t.Errorf("packet total = %d, want %d", total, tt.packets)
			}
		})
	}
}

func TestScannerPreservesOrder(t *testing.T) {
	s := NewScanner(stream(5), ScanOptions{BatchSize: 2})
	seq := uint16(0)
	for {
		pkt, err := s.Scan()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("Scan failed: %v", err)
		}
		if pkt.SeqCount() != seq {
			t.Errorf("SeqCount = %d, want %d", pkt.SeqCount(), seq)
		}
		seq++
	}
	if seq != 5 {
		t.Errorf("scanned %d packets, want 5", seq)
	}
}

func TestScannerAPIDFilter(t *testing.T) {
	// stream(6) carries APIDs 1,2,3,1,2,3.
	s := NewScanner(stream(6), ScanOptions{APIDs: []uint16{2}})
	batches := collect(t, s)

	if len(batches) != 1 || len(batches[0]) != 2 {
		t.Fatalf("got %d batches, want 1 batch of 2 packets", len(batches))
	}
	for _, pkt := range batches[0] {
		if pkt.APID() != 2 {
			t.Errorf("APID = %d, want 2", pkt.APID())
		}
	}

	stats := s.Stats()
	if stats.Emitted != 2 {
		t.Errorf("Emitted = %d, want 2", stats.Emitted)
	}
	if stats.Filtered != 4 {
		t.Errorf("Filtered = %d, want 4", stats.Filtered)
	}
}

func TestScannerSkipsMalformedHeaderByOneByte(t *testing.T) {
	good := buildPacket(1, 0, false, []byte{0xAA, 0xBB})
	// Three garbage bytes with a non-zero version nibble ahead of a good packet.
	buf := append([]byte{0xE0, 0xE1, 0xE2}, good...)

	s := NewScanner(buf, ScanOptions{})
	pkt, err := s.Scan()
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if pkt.APID() != 1 {
		t.Errorf("APID = %d, want 1", pkt.APID())
	}
	if s.Stats().Skipped != 3 {
		t.Errorf("Skipped = %d, want 3", s.Stats().Skipped)
	}
}

func TestScannerTruncatedTailIsCleanEOF(t *testing.T) {
	buf := stream(2)
	buf = append(buf, buildPacket(1, 9, false, []byte{0x01, 0x02})[:6]...) // header only

	s := NewScanner(buf, ScanOptions{BatchSize: 10})
	batch, err := s.NextBatch()
	if err != nil {
		t.Fatalf("NextBatch failed: %v", err)
	}
	if len(batch) != 2 {
		t.Errorf("batch size = %d, want 2", len(batch))
	}
	if _, err := s.NextBatch(); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF after truncated tail, got %v", err)
	}
}

func TestScannerFrameSync(t *testing.T) {
	p0 := buildPacket(1, 0, false, []byte{0x01, 0x02})
	p1 := buildPacket(2, 1, false, []byte{0x03, 0x04})

	var buf []byte
	buf = append(buf, 0xDE, 0xAD) // leading garbage
	buf = append(buf, SyncMarker...)
	buf = append(buf, p0...)
	buf = append(buf, 0xFF, 0xFF, 0xFF) // inter-marker garbage
	buf = append(buf, SyncMarker...)
	buf = append(buf, p1...)

	s := NewScanner(buf, ScanOptions{FrameSync: true})
	batches := collect(t, s)

	if len(batches) != 1 || len(batches[0]) != 2 {
		t.Fatalf("got %v, want 1 batch of 2 packets", batches)
	}
	if batches[0][0].APID() != 1 || batches[0][1].APID() != 2 {
		t.Errorf("APIDs = %d,%d, want 1,2", batches[0][0].APID(), batches[0][1].APID())
	}
}

func TestScannerFrameSyncNoMarkerYieldsNothing(t *testing.T) {
	// Well-formed packets, but no sync marker anywhere.
	s := NewScanner(stream(3), ScanOptions{FrameSync: true})
	if _, err := s.NextBatch(); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF, got %v", err)
	}
}

func TestScannerEmptyBuffer(t *testing.T) {
	s := NewScanner(nil, ScanOptions{})
	if _, err := s.NextBatch(); !errors.Is(err, io.EOF) {
		t.Errorf("expected io.EOF, got %v", err)
	}
}
