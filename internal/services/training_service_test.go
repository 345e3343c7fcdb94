package services

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stitts-dev/acebet/internal/dataset"
	"github.com/stitts-dev/acebet/internal/train"
	"github.com/stitts-dev/acebet/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTrainingService(t *testing.T, registry *RunRegistry) (*TrainingService, string) {
	t.Helper()
	modelDir := t.TempDir()
	svc := NewTrainingService(writeDataset(t, 200), newTrainer(t), NewModelStore(modelDir), registry)
	svc.SetClock(func() time.Time { return fixedNow })
	return svc, modelDir
}

func TestTrainModelRecordsRun(t *testing.T) {
	registry := newRegistry(t)
	svc, modelDir := newTrainingService(t, registry)
	ctx := testContext(t)

	run, err := svc.TrainModel(ctx, "2019-01-01", "2019-12-31")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(modelDir, "model_2024-03-05-14-07.json"), run.ArtifactPath)
	assert.FileExists(t, run.ArtifactPath)
	assert.Equal(t, 68, run.TrainRows)
	assert.Equal(t, 66, run.HoldoutRows)
	assert.True(t, run.TrainEnd.Before(run.HoldoutStart))
	require.NotNil(t, run.HoldoutAccuracy)

	var features []string
	require.NoError(t, json.Unmarshal(run.Features, &features))
	for _, ex := range train.DefaultConfig().ExcludedColumns {
		assert.NotContains(t, features, ex)
	}

	latest, err := registry.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, run.ID, latest.ID)
	assert.Equal(t, "2019-01-01", latest.StartDate)

	artifact, err := LoadArtifact(run.ArtifactPath)
	require.NoError(t, err)
	assert.Equal(t, "2019-12-31", artifact.EndDate)
}

func TestTrainModelWithoutRegistry(t *testing.T) {
	svc, _ := newTrainingService(t, nil)

	run, err := svc.TrainModel(testContext(t), "2019-01-01", "2019-12-31")
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
}

func TestTrainModelErrors(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		target     error
	}{
		{name: "empty window", start: "2020-01-01", end: "2020-01-01", target: utils.ErrEmptyWindow},
		{name: "bad start", start: "2020-13-01", end: "2020-12-31", target: utils.ErrInvalidInput},
		{name: "bad end", start: "2020-01-01", end: "tomorrow", target: utils.ErrInvalidInput},
		{name: "too few rows", start: "2019-01-01", end: "2019-01-01", target: utils.ErrInsufficientRows},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, modelDir := newTrainingService(t, nil)

			_, err := svc.TrainModel(testContext(t), tt.start, tt.end)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)

			entries, err := os.ReadDir(modelDir)
			require.NoError(t, err)
			assert.Empty(t, entries, "no artifact on failure")
		})
	}
}

func TestTrainModelMissingDataset(t *testing.T) {
	svc := NewTrainingService(
		dataset.NewStore(filepath.Join(t.TempDir(), "absent.parquet"), 1),
		newTrainer(t), NewModelStore(t.TempDir()), nil,
	)

	_, err := svc.TrainModel(testContext(t), "2019-01-01", "2019-12-31")
	assert.ErrorIs(t, err, os.ErrNotExist)

	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, utils.StageTrain, appErr.Stage)
}

func TestTrainModelEmptyDataset(t *testing.T) {
	modelDir := t.TempDir()
	svc := NewTrainingService(writeDataset(t, 0), newTrainer(t), NewModelStore(modelDir), nil)

	_, err := svc.TrainModel(testContext(t), "2020-01-01", "2020-01-01")
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrEmptyWindow)
	assert.Contains(t, err.Error(), "start=2020-01-01 end=2020-01-01")
}
