package csvfile

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stellab.xyz/argus/internal/telemetry"
)

func TestCSVLoaderWritesSamples(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")

	l := NewCSVLoader()
	require.NoError(t, l.Init(map[string]any{"path": path}))

	ds := telemetry.NewDataset()
	ds.AddParameter(telemetry.EngineeringParameter{
		Name: "BATT_VOLT", APID: 100, SeqCount: 1, SampleTime: 2.0,
		Raw: telemetry.RawUint(820), Eng: telemetry.EngNum(8.2),
		Unit: "V", CalibrationID: "polynomial",
	})
	ds.AddParameter(telemetry.EngineeringParameter{
		Name: "BATT_VOLT", APID: 100, SeqCount: 0, SampleTime: 1.0,
		Raw: telemetry.RawUint(810), Eng: telemetry.EngNum(8.1),
		Unit: "V", CalibrationID: "polynomial",
	})

	require.NoError(t, l.Load(context.Background(), ds))
	require.NoError(t, l.Close())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3) // header + 2 samples

	assert.Equal(t, header, rows[0])
	// Samples come out in time order regardless of insertion order.
	assert.Equal(t, "1", rows[1][3])
	assert.Equal(t, "2", rows[2][3])
	assert.Equal(t, "810", rows[1][4])
	assert.Equal(t, "8.1", rows[1][5])
	assert.Equal(t, "V", rows[1][6])
}

func TestCSVLoaderRequiresPath(t *testing.T) {
	l := NewCSVLoader()
	assert.Error(t, l.Init(map[string]any{}))
}
