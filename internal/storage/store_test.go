package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/phaseavg/internal/average"
	"github.com/san-kum/phaseavg/internal/field"
	"github.com/san-kum/phaseavg/internal/schedule"
)

func TestStoreSaveLoad(t *testing.T) {
	st := New(t.TempDir())

	meta := RunMetadata{
		Field:      "U",
		Kind:       "vector",
		Output:     "U_phase_locked_0.5",
		PhaseStart: 0.5,
		CycleTime:  1,
		WrittenAt:  "2",
		Visited:    5,
		Count:      2,
		Summary:    field.Summary{Count: 2, Min: 1, Max: 3, Mean: 2},
	}
	samples := []Sample{
		{Time: 0.5, Instant: 0.5, Status: "matched", MeanMag: 1.25},
		{Time: 1.5, Instant: 1.5, Status: "missing"},
	}

	runID, err := st.Save(meta, samples)
	require.NoError(t, err)
	require.NotEmpty(t, runID)

	assert.FileExists(t, filepath.Join(st.Dir(), runID, "metadata.json"))
	assert.FileExists(t, filepath.Join(st.Dir(), runID, "samples.csv"))

	loaded, err := st.Load(runID)
	require.NoError(t, err)
	assert.Equal(t, runID, loaded.ID)
	assert.Equal(t, "U_phase_locked_0.5", loaded.Output)
	assert.Equal(t, 2, loaded.Count)
	assert.Equal(t, meta.Summary, loaded.Summary)
	assert.False(t, loaded.Timestamp.IsZero())

	got, err := st.LoadSamples(runID)
	require.NoError(t, err)
	assert.Equal(t, samples, got)
}

func TestStoreListOrder(t *testing.T) {
	st := New(t.TempDir())

	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	newer, err := st.Save(RunMetadata{Field: "p", Timestamp: base.Add(time.Hour)}, nil)
	require.NoError(t, err)
	older, err := st.Save(RunMetadata{Field: "U", Timestamp: base}, nil)
	require.NoError(t, err)

	// Directories without metadata are skipped.
	require.NoError(t, os.MkdirAll(filepath.Join(st.Dir(), "junk"), 0755))

	runs, err := st.List()
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, older, runs[0].ID)
	assert.Equal(t, newer, runs[1].ID)
}

func TestStoreListMissingDir(t *testing.T) {
	st := New(filepath.Join(t.TempDir(), "absent"))

	runs, err := st.List()
	require.NoError(t, err)
	assert.Empty(t, runs)
}

func TestStoreLoadUnknownRun(t *testing.T) {
	st := New(t.TempDir())

	_, err := st.Load("nope")
	assert.ErrorIs(t, err, ErrRunNotFound)

	_, err = st.LoadSamples("nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestStoreEmptySamples(t *testing.T) {
	st := New(t.TempDir())

	runID, err := st.Save(RunMetadata{Field: "T"}, nil)
	require.NoError(t, err)

	got, err := st.LoadSamples(runID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFromResult(t *testing.T) {
	res := &average.Result{
		Name:     "U_phase_locked_0.5",
		Field:    "U",
		Kind:     field.KindVector,
		Schedule: schedule.Schedule{PhaseStart: 0.5, CycleLength: 1},
		Time:     2,
		TimeName: "2",
		Count:    1,
		Visited:  5,
		Samples: []average.Visit{
			{Time: 0.5, Instant: 0.5, Scheduled: true, Status: average.StatusMatched, MeanMag: 3},
			{Time: 1.5, Instant: 1.5, Scheduled: true, Status: average.StatusMissing},
		},
	}

	meta, samples := FromResult("/cases/pitz", "region0", res)
	assert.Equal(t, "vector", meta.Kind)
	assert.Equal(t, "2", meta.WrittenAt)
	assert.Equal(t, 0.5, meta.PhaseStart)
	assert.Equal(t, 1.0, meta.CycleTime)
	assert.Equal(t, []Sample{
		{Time: 0.5, Instant: 0.5, Status: "matched", MeanMag: 3},
		{Time: 1.5, Instant: 1.5, Status: "missing"},
	}, samples)
}

func TestForCase(t *testing.T) {
	assert.Equal(t, filepath.Join("case", "postProcessing", "phaseAverage"), ForCase("case").Dir())
}
