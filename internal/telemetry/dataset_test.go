package telemetry

import (
	"reflect"
	"testing"

	"stellab.xyz/argus/internal/ccsds"
)

func sample(name string, time float64) EngineeringParameter {
	return EngineeringParameter{Name: name, SampleTime: time, Raw: RawUint(uint64(time))}
}

func datasetWith(samples ...EngineeringParameter) *Dataset {
	ds := NewDataset()
	for _, s := range samples {
		ds.AddParameter(s)
	}
	return ds
}

func TestAddParameterCreatesRecordLazily(t *testing.T) {
	ds := NewDataset()
	if ds.Record("TEMP") != nil {
		t.Fatal("Record returned a record before any sample was added")
	}

	ds.AddParameter(sample("TEMP", 1))
	ds.AddParameter(sample("TEMP", 2))
	ds.AddParameter(sample("VOLT", 1))

	if got := ds.Record("TEMP").Count(); got != 2 {
		t.Errorf("TEMP count = %d, want 2", got)
	}
	if got := ds.SampleCount(); got != 3 {
		t.Errorf("SampleCount = %d, want 3", got)
	}
	if got := ds.ParameterNames(); !reflect.DeepEqual(got, []string{"TEMP", "VOLT"}) {
		t.Errorf("ParameterNames = %v, want [TEMP VOLT]", got)
	}
}

func TestPacketsByAPID(t *testing.T) {
	ds := NewDataset()
	for _, apid := range []uint16{1, 2, 1, 3} {
		ds.AddPacket(&ccsds.Packet{Header: ccsds.PrimaryHeader{APID: apid}})
	}
	if got := len(ds.PacketsByAPID(1)); got != 2 {
		t.Errorf("PacketsByAPID(1) = %d packets, want 2", got)
	}
	if got := ds.PacketsByAPID(9); got != nil {
		t.Errorf("PacketsByAPID(9) = %v, want nil", got)
	}
}

func TestMergeAccumulatesSamples(t *testing.T) {
	a := datasetWith(sample("TEMP", 1), sample("VOLT", 1))
	b := datasetWith(sample("TEMP", 2), sample("CURR", 1))
	a.Metadata["source"] = "a"
	b.Metadata["source"] = "b"
	b.Metadata["extra"] = 1

	merged := a.Merge(b)

	if got := merged.Record("TEMP").Count(); got != 2 {
		t.Errorf("TEMP count = %d, want 2", got)
	}
	if merged.SampleCount() != 4 {
		t.Errorf("SampleCount = %d, want 4", merged.SampleCount())
	}
	// Other side wins on metadata collision.
	if merged.Metadata["source"] != "b" {
		t.Errorf("metadata source = %v, want b", merged.Metadata["source"])
	}
	// Operands stay untouched.
	if a.Record("TEMP").Count() != 1 || b.Record("TEMP").Count() != 1 {
		t.Error("Merge mutated an operand")
	}
}

func TestMergeIsAssociativeOnSampleAccumulation(t *testing.T) {
	a := datasetWith(sample("TEMP", 1))
	b := datasetWith(sample("TEMP", 2), sample("VOLT", 1))
	c := datasetWith(sample("CURR", 1), sample("TEMP", 3))

	left := a.Merge(b).Merge(c)
	right := a.Merge(b.Merge(c))

	if !reflect.DeepEqual(left.Parameters, right.Parameters) {
		t.Errorf("merge not associative:\n left  %v\n right %v", left.Parameters, right.Parameters)
	}
	if left.SampleCount() != 5 {
		t.Errorf("SampleCount = %d, want 5", left.SampleCount())
	}
}
