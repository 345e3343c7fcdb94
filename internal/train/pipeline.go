package train

import (
	"github.com/go-gota/gota/dataframe"
	"github.com/stitts-dev/acebet/internal/gbm"
)

// Pipeline is the trained model: the encoder and the classifier only make
// sense together, so they are persisted and applied as one value.
type Pipeline struct {
	Features   []string        `json:"features"`
	Encoder    *OrdinalEncoder `json:"encoder"`
	Classifier *gbm.Classifier `json:"classifier"`
}

// PredictProba returns the probability that p1 wins for every row of df.
func (p *Pipeline) PredictProba(df dataframe.DataFrame) ([]float64, error) {
	if df.Nrow() == 0 {
		return []float64{}, nil
	}
	X, err := p.Encoder.Transform(df)
	if err != nil {
		return nil, err
	}
	return p.Classifier.PredictProba(X)
}

// Predict thresholds PredictProba at 0.5.
func (p *Pipeline) Predict(df dataframe.DataFrame) ([]bool, error) {
	proba, err := p.PredictProba(df)
	if err != nil {
		return nil, err
	}
	out := make([]bool, len(proba))
	for i, v := range proba {
		out[i] = v > 0.5
	}
	return out, nil
}

// FeatureImportance is the split count per feature name.
func (p *Pipeline) FeatureImportance() map[string]int {
	counts := p.Classifier.SplitCounts()
	out := make(map[string]int, len(p.Features))
	for i, name := range p.Features {
		if i < len(counts) {
			out[name] = counts[i]
		}
	}
	return out
}
