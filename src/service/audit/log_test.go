package audit

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smell-bot/src/model"
)

func TestRecordAndQuery(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.db")
	log, err := Open(path)
	require.NoError(t, err)

	older := &model.TrainingReport{
		ModelID:         "run-1",
		TrainedAt:       time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		FeatureVersion:  "v1",
		Samples:         2,
		LabelCounts:     map[int]int{0: 1, 1: 1},
		HoldoutAccuracy: 0.5,
	}
	newer := &model.TrainingReport{
		ModelID:         "run-2",
		TrainedAt:       time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
		FeatureVersion:  "v1",
		Synthetic:       true,
		Samples:         3,
		LabelCounts:     map[int]int{0: 2, 1: 1},
		HoldoutAccuracy: 0.9,
		CV:              model.CVScore{Mean: 0.85, Std: 0.05},
	}
	samples := []model.TrainingSample{
		{Features: []float64{1, 2.5}, Label: 0, Description: "clean"},
		{Features: []float64{3, 4}, Label: 1, Description: "smelly"},
		{Features: []float64{0, 0}, Label: 0},
	}

	require.NoError(t, log.Record(older, samples[:2]))
	require.NoError(t, log.Record(newer, samples))

	runs, err := log.Runs(10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-2", runs[0].ID)
	assert.True(t, runs[0].Synthetic)
	assert.Equal(t, 2, runs[0].Clean)
	assert.Equal(t, 1, runs[0].Smelly)
	assert.Equal(t, 0.85, runs[0].CVMean)
	assert.True(t, runs[0].TrainedAt.Equal(newer.TrainedAt))
	assert.Equal(t, "run-1", runs[1].ID)

	got, err := log.Samples("run-2")
	require.NoError(t, err)
	assert.Equal(t, samples, got)

	require.NoError(t, log.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()
	runs, err = reopened.Runs(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-2", runs[0].ID)
}

func TestDuplicateRunIsRolledBack(t *testing.T) {
	log, err := Open(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	defer log.Close()

	report := &model.TrainingReport{ModelID: "dup", TrainedAt: time.Now(), LabelCounts: map[int]int{}}
	require.NoError(t, log.Record(report, []model.TrainingSample{{Features: []float64{1}}}))
	assert.Error(t, log.Record(report, []model.TrainingSample{{Features: []float64{2}}, {Features: []float64{3}}}))

	got, err := log.Samples("dup")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, []float64{1}, got[0].Features)
}

func TestFailedSampleInsertDoesNotPoisonNextRecord(t *testing.T) {
	log, err := Open(filepath.Join(t.TempDir(), "audit.db"))
	require.NoError(t, err)
	defer log.Close()

	bad := &model.TrainingReport{ModelID: "bad", TrainedAt: time.Now(), LabelCounts: map[int]int{}}
	require.Error(t, log.Record(bad, []model.TrainingSample{
		{Features: []float64{1}, Label: 0},
		{Features: []float64{2}, Label: 7},
		{Features: []float64{3}, Label: 1},
	}))

	runs, err := log.Runs(10)
	require.NoError(t, err)
	assert.Empty(t, runs)

	good := &model.TrainingReport{ModelID: "good", TrainedAt: time.Now(), LabelCounts: map[int]int{0: 1, 1: 1}}
	require.NoError(t, log.Record(good, []model.TrainingSample{
		{Features: []float64{4}, Label: 0, Description: "first"},
		{Features: []float64{5}, Label: 1, Description: "second"},
	}))

	got, err := log.Samples("good")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Description)
	assert.Equal(t, []float64{5}, got[1].Features)
}
