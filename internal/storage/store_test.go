package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/tvcsim/internal/dynamo"
	"github.com/san-kum/tvcsim/internal/flight"
	"github.com/san-kum/tvcsim/internal/recorder"
	"github.com/san-kum/tvcsim/internal/vehicle"
)

func sampleRecorder() *recorder.Recorder {
	rec := recorder.New()
	for i := 1; i <= 3; i++ {
		s := make(dynamo.State, vehicle.StateSize)
		s[vehicle.PosZ] = float64(i)
		s[vehicle.QuatW] = 1
		s[vehicle.Mass] = 50 - float64(i)
		rec.Append(float64(i)*0.01, s)
	}
	return rec
}

func TestSaveLoad(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	stats := flight.Stats{MaxAltitude: 3, MaxSpeed: 1.5, Elapsed: 0.03, Steps: 3}
	runID, err := st.Save("vertical", 0.01, vehicle.New().GetParams(), stats, sampleRecorder())
	require.NoError(t, err)
	assert.NotEmpty(t, runID)

	meta, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, runID, meta.ID)
	assert.Equal(t, "vertical", meta.Preset)
	assert.Equal(t, 0.01, meta.Dt)
	assert.Equal(t, 3, meta.Steps)
	assert.Equal(t, 3.0, meta.Stats.MaxAltitude)
	assert.Equal(t, vehicle.New().MaxThrust, meta.Vehicle["max_thrust"])
}

func TestLoadFlight(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	runID, err := st.Save("", 0.01, nil, flight.Stats{}, sampleRecorder())
	require.NoError(t, err)

	rec, err := st.LoadFlight(runID)
	require.NoError(t, err)
	require.Equal(t, 3, rec.Len())
	assert.Equal(t, 2.0, rec.At(1).State[vehicle.PosZ])
}

func TestList(t *testing.T) {
	st := New(t.TempDir())
	require.NoError(t, st.Init())

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)

	_, err = st.Save("", 0.01, nil, flight.Stats{}, sampleRecorder())
	require.NoError(t, err)
	_, err = st.Save("", 0.01, nil, flight.Stats{}, sampleRecorder())
	require.NoError(t, err)

	runs, err = st.List()
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "never-created"))

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestFileStructure(t *testing.T) {
	dir := t.TempDir()
	st := New(dir)
	require.NoError(t, st.Init())

	runID, err := st.Save("", 0.01, nil, flight.Stats{}, sampleRecorder())
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, runID, "metadata.json"))
	assert.NoError(t, err, "metadata.json not created")

	_, err = os.Stat(st.FlightPath(runID))
	assert.NoError(t, err, "flight.csv not created")
}
