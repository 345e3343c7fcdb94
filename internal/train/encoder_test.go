package train

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/stitts-dev/acebet/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encoderFrame(surface []string, rank []float64) dataframe.DataFrame {
	return dataframe.New(
		series.New(surface, series.String, "surface"),
		series.New(rank, series.Float, "rank_diff"),
	)
}

func TestOrdinalEncoderFit(t *testing.T) {
	enc := NewOrdinalEncoder()
	require.NoError(t, enc.Fit(encoderFrame(
		[]string{"Hard", "Clay", "Hard", "Grass", ""},
		[]float64{1, 2, 3, 4, 5},
	)))

	assert.Equal(t, []string{"surface", "rank_diff"}, enc.Features)
	assert.Equal(t, []string{"Clay", "Grass", "Hard"}, enc.Categories["surface"])
	_, numeric := enc.Categories["rank_diff"]
	assert.False(t, numeric)
}

func TestOrdinalEncoderTransform(t *testing.T) {
	enc := NewOrdinalEncoder()
	require.NoError(t, enc.Fit(encoderFrame([]string{"Hard", "Clay"}, []float64{1, 2})))

	// columns arrive in another order and carry an unseen category
	df := dataframe.New(
		series.New([]float64{-3, math.NaN(), 7}, series.Float, "rank_diff"),
		series.New([]string{"Clay", "Carpet", ""}, series.String, "surface"),
		series.New([]string{"x", "y", "z"}, series.String, "unused"),
	)
	X, err := enc.Transform(df)
	require.NoError(t, err)

	rows, cols := X.Dims()
	assert.Equal(t, 3, rows)
	assert.Equal(t, 2, cols)

	assert.Equal(t, 0.0, X.At(0, 0))
	assert.True(t, math.IsNaN(X.At(1, 0)), "unseen category")
	assert.True(t, math.IsNaN(X.At(2, 0)), "empty category")

	assert.Equal(t, -3.0, X.At(0, 1))
	assert.True(t, math.IsNaN(X.At(1, 1)))
	assert.Equal(t, 7.0, X.At(2, 1))
}

func TestOrdinalEncoderMissingColumn(t *testing.T) {
	enc := NewOrdinalEncoder()
	require.NoError(t, enc.Fit(encoderFrame([]string{"Hard"}, []float64{1})))

	_, err := enc.Transform(dataframe.New(series.New([]float64{1}, series.Float, "rank_diff")))
	require.Error(t, err)
	assert.True(t, errors.Is(err, utils.ErrSchemaMismatch))
	assert.Contains(t, err.Error(), "column=surface")
}

func TestOrdinalEncoderUnfitted(t *testing.T) {
	_, err := NewOrdinalEncoder().Transform(encoderFrame([]string{"Hard"}, []float64{1}))
	assert.Error(t, err)
}
