package train

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// Metrics summarises a model on its holdout block. AUC is NaN when the
// holdout contains a single class.
type Metrics struct {
	Accuracy float64
	LogLoss  float64
	AUC      float64
}

// Evaluate scores the pipeline on a labelled frame.
func Evaluate(p *Pipeline, holdout TrainingFrame) (Metrics, error) {
	if holdout.Len() == 0 {
		return Metrics{}, fmt.Errorf("empty holdout")
	}
	proba, err := p.PredictProba(holdout.Features)
	if err != nil {
		return Metrics{}, err
	}
	return score(proba, holdout.Labels), nil
}

func score(proba, labels []float64) Metrics {
	const eps = 1e-15
	n := float64(len(labels))

	var correct, loss float64
	for i, y := range labels {
		p := proba[i]
		if (p > 0.5) == (y == 1) {
			correct++
		}
		p = math.Min(math.Max(p, eps), 1-eps)
		loss -= y*math.Log(p) + (1-y)*math.Log(1-p)
	}

	return Metrics{
		Accuracy: correct / n,
		LogLoss:  loss / n,
		AUC:      rocAUC(proba, labels),
	}
}

func rocAUC(proba, labels []float64) float64 {
	type pair struct {
		score float64
		class bool
	}
	pairs := make([]pair, len(proba))
	positives := 0
	for i := range proba {
		pairs[i] = pair{score: proba[i], class: labels[i] == 1}
		if pairs[i].class {
			positives++
		}
	}
	if positives == 0 || positives == len(pairs) {
		return math.NaN()
	}

	// stat.ROC wants scores in ascending order
	sort.Slice(pairs, func(i, j int) bool { return pairs[i].score < pairs[j].score })
	y := make([]float64, len(pairs))
	classes := make([]bool, len(pairs))
	for i, p := range pairs {
		y[i] = p.score
		classes[i] = p.class
	}

	tpr, fpr, _ := stat.ROC(nil, y, classes, nil)
	return integrate.Trapezoidal(fpr, tpr)
}
