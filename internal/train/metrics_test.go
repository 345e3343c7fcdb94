package train

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name     string
		proba    []float64
		labels   []float64
		accuracy float64
		auc      float64
	}{
		{name: "perfect ranking", proba: []float64{0.9, 0.8, 0.2, 0.1}, labels: []float64{1, 1, 0, 0}, accuracy: 1, auc: 1},
		{name: "inverted ranking", proba: []float64{0.1, 0.2, 0.8, 0.9}, labels: []float64{1, 1, 0, 0}, accuracy: 0, auc: 0},
		{name: "half right", proba: []float64{0.6, 0.4, 0.6, 0.4}, labels: []float64{1, 1, 0, 0}, accuracy: 0.5, auc: 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := score(tt.proba, tt.labels)
			assert.InDelta(t, tt.accuracy, m.Accuracy, 1e-12)
			assert.InDelta(t, tt.auc, m.AUC, 1e-12)
		})
	}
}

func TestScoreLogLoss(t *testing.T) {
	m := score([]float64{0.9, 0.2}, []float64{1, 0})
	want := -(math.Log(0.9) + math.Log(0.8)) / 2
	assert.InDelta(t, want, m.LogLoss, 1e-12)

	// clipped, never infinite
	m = score([]float64{0, 1}, []float64{1, 0})
	assert.False(t, math.IsInf(m.LogLoss, 0))
}

func TestScoreSingleClassAUC(t *testing.T) {
	m := score([]float64{0.7, 0.4}, []float64{1, 1})
	assert.True(t, math.IsNaN(m.AUC))
	assert.InDelta(t, 0.5, m.Accuracy, 1e-12)
}
