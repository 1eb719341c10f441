package telemetry

import (
	"sort"

	"stellab.xyz/argus/internal/ccsds"
)

// Dataset is the batch container handed from stage to stage. It is owned
// exclusively by whichever stage currently holds it; ownership transfers
// down the pipeline, so no internal locking is needed.
type Dataset struct {
	Packets    []*ccsds.Packet
	Parameters map[string]*ParameterRecord
	Metadata   map[string]any
}

// NewDataset creates an empty batch.
func NewDataset() *Dataset {
	return &Dataset{
		Parameters: make(map[string]*ParameterRecord),
		Metadata:   make(map[string]any),
	}
}

// Len is the number of packets in the batch.
func (d *Dataset) Len() int { return len(d.Packets) }

// AddPacket appends a packet to the batch.
func (d *Dataset) AddPacket(p *ccsds.Packet) {
	d.Packets = append(d.Packets, p)
}

// PacketsByAPID returns the packets carrying the given APID, in batch order.
func (d *Dataset) PacketsByAPID(apid uint16) []*ccsds.Packet {
	var out []*ccsds.Packet
	for _, p := range d.Packets {
		if p.APID() == apid {
			out = append(out, p)
		}
	}
	return out
}

// AddParameter appends a sample to the record for its name, creating the
// record lazily on first use.
func (d *Dataset) AddParameter(sample EngineeringParameter) {
	rec, ok := d.Parameters[sample.Name]
	if !ok {
		rec = &ParameterRecord{Name: sample.Name, Unit: sample.Unit}
		d.Parameters[sample.Name] = rec
	}
	rec.Samples = append(rec.Samples, sample)
}

// Record returns the record for name, or nil when no sample has been added.
func (d *Dataset) Record(name string) *ParameterRecord {
	return d.Parameters[name]
}

// ParameterNames returns all record names in sorted order for deterministic
// iteration.
func (d *Dataset) ParameterNames() []string {
	names := make([]string, 0, len(d.Parameters))
	for name := range d.Parameters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SampleCount is the total number of samples across all records.
func (d *Dataset) SampleCount() int {
	n := 0
	for _, rec := range d.Parameters {
		n += len(rec.Samples)
	}
	return n
}

// Merge combines two batches into a new one without touching either operand.
// Packets concatenate, metadata is overlaid (other wins on key collision),
// and records with the same name accumulate samples in order. Merge is
// associative over sample accumulation.
func (d *Dataset) Merge(other *Dataset) *Dataset {
	merged := NewDataset()
	merged.Packets = make([]*ccsds.Packet, 0, len(d.Packets)+len(other.Packets))
	merged.Packets = append(merged.Packets, d.Packets...)
	merged.Packets = append(merged.Packets, other.Packets...)
	for k, v := range d.Metadata {
		merged.Metadata[k] = v
	}
	for k, v := range other.Metadata {
		merged.Metadata[k] = v
	}
	for _, src := range []*Dataset{d, other} {
		for name, rec := range src.Parameters {
			dst, ok := merged.Parameters[name]
			if !ok {
				dst = &ParameterRecord{Name: rec.Name, Unit: rec.Unit}
				merged.Parameters[name] = dst
			}
			dst.Samples = append(dst.Samples, rec.Samples...)
		}
	}
	return merged
}
