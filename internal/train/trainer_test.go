package train

import (
	"errors"
	"testing"

	"github.com/stitts-dev/acebet/internal/dataprep"
	"github.com/stitts-dev/acebet/internal/dataset"
	"github.com/stitts-dev/acebet/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTrainer(t *testing.T) *Trainer {
	t.Helper()
	tr, err := New(DefaultConfig())
	require.NoError(t, err)
	return tr
}

func TestTrainEmptyWindow(t *testing.T) {
	df := syntheticFrame(40)

	_, err := newTrainer(t).Train(df, date("2020-01-01"), date("2020-01-01"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrEmptyWindow))

	var appErr *utils.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, utils.ErrCodeEmptyWindow, appErr.Code)
	assert.Equal(t, utils.StageTrain, appErr.Stage)
	assert.Contains(t, appErr.Details, "start=2020-01-01")
	assert.Contains(t, appErr.Details, "end=2020-01-01")
}

func TestTrainTooFewRows(t *testing.T) {
	df := syntheticFrame(40)

	_, err := newTrainer(t).Train(df, date("2019-01-01"), date("2019-01-01"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrInsufficientRows))
}

func TestTrainFitsChronologically(t *testing.T) {
	df := syntheticFrame(200)

	res, err := newTrainer(t).Train(df, date("2019-01-01"), date("2019-12-31"))
	require.NoError(t, err)

	assert.Equal(t, 68, res.TrainRows)
	assert.Equal(t, 66, res.HoldoutRows)
	assert.Equal(t, res.HoldoutRows, res.Holdout.Len())
	assert.True(t, res.TrainEnd.Before(res.HoldoutStart))
	assert.Equal(t, date("2019-01-01"), res.TrainStart)
	assert.False(t, res.HoldoutEnd.Before(res.HoldoutStart))

	for _, ex := range DefaultConfig().ExcludedColumns {
		assert.NotContains(t, res.Pipeline.Features, ex)
		assert.NotContains(t, res.Holdout.Features.Names(), ex)
	}

	assert.True(t, res.Pipeline.Classifier.Fitted())
	assert.Greater(t, res.Metrics.Accuracy, 0.7)
	assert.Greater(t, res.Metrics.AUC, 0.7)
}

func TestTrainIsDeterministic(t *testing.T) {
	df := syntheticFrame(120)

	a, err := newTrainer(t).Train(df, date("2019-01-01"), date("2019-12-31"))
	require.NoError(t, err)
	b, err := newTrainer(t).Train(df, date("2019-01-01"), date("2019-12-31"))
	require.NoError(t, err)

	assert.Equal(t, a.Pipeline.Classifier.Trees, b.Pipeline.Classifier.Trees)
	assert.Equal(t, a.Metrics, b.Metrics)
}

func TestPipelineAbsorbsUnknownCategories(t *testing.T) {
	res, err := newTrainer(t).Train(syntheticFrame(200), date("2019-01-01"), date("2019-12-31"))
	require.NoError(t, err)

	matches := syntheticMatches(6)
	for i := range matches {
		matches[i].Context.Surface = "Carpet"
		matches[i].Context.Tournament = "Masters Cup"
	}
	unseen := dataset.ToFrame(dataprep.Prepare(matches))

	proba, err := res.Pipeline.PredictProba(unseen)
	require.NoError(t, err)
	require.Len(t, proba, 6)
	for _, p := range proba {
		assert.GreaterOrEqual(t, p, 0.0)
		assert.LessOrEqual(t, p, 1.0)
	}

	labels, err := res.Pipeline.Predict(unseen)
	require.NoError(t, err)
	assert.Len(t, labels, 6)
}

func TestFeatureImportanceCoversFeatures(t *testing.T) {
	res, err := newTrainer(t).Train(syntheticFrame(200), date("2019-01-01"), date("2019-12-31"))
	require.NoError(t, err)

	importance := res.Pipeline.FeatureImportance()
	assert.Len(t, importance, len(res.Pipeline.Features))
	total := 0
	for _, c := range importance {
		total += c
	}
	assert.Greater(t, total, 0)
}

func TestNewValidatesConfig(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{name: "one split", mutate: func(c *Config) { c.SplitCount = 1 }},
		{name: "index out of range", mutate: func(c *Config) { c.SplitIndex = 2 }},
		{name: "negative index", mutate: func(c *Config) { c.SplitIndex = -1 }},
		{name: "bad classifier", mutate: func(c *Config) { c.Classifier.NumEstimators = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			_, err := New(cfg)
			require.Error(t, err)
			assert.True(t, errors.Is(err, utils.ErrInvalidInput))
		})
	}
}

func TestConfigIsCopied(t *testing.T) {
	cfg := DefaultConfig()
	tr, err := New(cfg)
	require.NoError(t, err)

	cfg.ExcludedColumns[0] = "changed"
	got := tr.Config()
	assert.Equal(t, DefaultConfig().ExcludedColumns, got.ExcludedColumns)

	got.ExcludedColumns[1] = "changed"
	assert.Equal(t, DefaultConfig().ExcludedColumns, tr.Config().ExcludedColumns)
}
