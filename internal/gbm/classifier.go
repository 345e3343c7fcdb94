// Package gbm implements a small leaf-wise gradient-boosted decision tree
// classifier for binary outcomes, in the spirit of LightGBM's gbdt mode.
package gbm

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrNotFitted     = errors.New("classifier is not fitted")
	ErrEmptyTraining = errors.New("no training rows")
)

// Params are the boosting knobs. They are fixed per run, not tuned.
type Params struct {
	NumEstimators   int     `json:"n_estimators"`
	LearningRate    float64 `json:"learning_rate"`
	NumLeaves       int     `json:"num_leaves"`
	MinChildSamples int     `json:"min_child_samples"`
	MinChildWeight  float64 `json:"min_child_weight"`
	Subsample       float64 `json:"subsample"`
	SubsampleFreq   int     `json:"subsample_freq"`
	ColsampleByTree float64 `json:"colsample_bytree"`
	RegAlpha        float64 `json:"reg_alpha"`
	RegLambda       float64 `json:"reg_lambda"`
	Seed            int64   `json:"seed"`
}

// DefaultParams keeps trees shallow and subsamples rows and columns so small
// date windows underfit rather than overfit.
func DefaultParams() Params {
	return Params{
		NumEstimators:   45,
		LearningRate:    0.1,
		NumLeaves:       4,
		MinChildSamples: 20,
		MinChildWeight:  1e-3,
		Subsample:       0.7957346694832138,
		SubsampleFreq:   4,
		ColsampleByTree: 0.4,
		RegAlpha:        0,
		RegLambda:       0,
		Seed:            42,
	}
}

func (p Params) Validate() error {
	switch {
	case p.NumEstimators < 1:
		return fmt.Errorf("n_estimators must be positive, got %d", p.NumEstimators)
	case p.LearningRate <= 0:
		return fmt.Errorf("learning_rate must be positive, got %v", p.LearningRate)
	case p.NumLeaves < 2:
		return fmt.Errorf("num_leaves must be at least 2, got %d", p.NumLeaves)
	case p.MinChildSamples < 1:
		return fmt.Errorf("min_child_samples must be positive, got %d", p.MinChildSamples)
	case p.Subsample <= 0 || p.Subsample > 1:
		return fmt.Errorf("subsample must be in (0, 1], got %v", p.Subsample)
	case p.ColsampleByTree <= 0 || p.ColsampleByTree > 1:
		return fmt.Errorf("colsample_bytree must be in (0, 1], got %v", p.ColsampleByTree)
	case p.RegAlpha < 0 || p.RegLambda < 0:
		return fmt.Errorf("regularization must be non-negative")
	}
	return nil
}

// Classifier is a fitted (or unfitted) boosted ensemble. It serializes to
// JSON as-is.
type Classifier struct {
	Params      Params  `json:"params"`
	NumFeatures int     `json:"num_features"`
	InitScore   float64 `json:"init_score"`
	Trees       []Tree  `json:"trees"`
}

func NewClassifier(params Params) *Classifier {
	return &Classifier{Params: params}
}

// Fitted reports whether Fit has completed.
func (c *Classifier) Fitted() bool {
	return c.NumFeatures > 0
}

// Fit trains on X (rows x features, NaN = missing) and labels y in {0, 1}.
func (c *Classifier) Fit(X mat.Matrix, y []float64) error {
	if err := c.Params.Validate(); err != nil {
		return err
	}
	rows, cols := X.Dims()
	if rows == 0 {
		return ErrEmptyTraining
	}
	if cols == 0 {
		return fmt.Errorf("no feature columns")
	}
	if rows != len(y) {
		return fmt.Errorf("feature rows (%d) and labels (%d) differ", rows, len(y))
	}
	for i, v := range y {
		if v != 0 && v != 1 {
			return fmt.Errorf("label %d is %v, want 0 or 1", i, v)
		}
	}

	columns := make([][]float64, cols)
	for j := range columns {
		columns[j] = mat.Col(nil, j, X)
	}

	c.NumFeatures = cols
	c.InitScore = logOdds(floats.Sum(y) / float64(rows))
	c.Trees = c.Trees[:0]

	rng := rand.New(rand.NewSource(c.Params.Seed))
	scores := make([]float64, rows)
	for i := range scores {
		scores[i] = c.InitScore
	}
	grad := make([]float64, rows)
	hess := make([]float64, rows)

	allRows := make([]int, rows)
	for i := range allRows {
		allRows[i] = i
	}
	bag := allRows

	b := &builder{params: c.Params, columns: columns, grad: grad, hess: hess}
	for iter := 0; iter < c.Params.NumEstimators; iter++ {
		for i := range scores {
			p := sigmoid(scores[i])
			grad[i] = p - y[i]
			hess[i] = math.Max(p*(1-p), 1e-16)
		}

		if c.Params.Subsample < 1 && c.Params.SubsampleFreq > 0 && iter%c.Params.SubsampleFreq == 0 {
			bag = sampleRows(rng, rows, c.Params.Subsample)
		}
		features := sampleFeatures(rng, cols, c.Params.ColsampleByTree)

		tree := b.grow(bag, features)
		for i := range scores {
			scores[i] += tree.predictColumns(columns, i)
		}
		c.Trees = append(c.Trees, tree)
	}
	return nil
}

// RawScore returns the margin (log-odds) for every row of X.
func (c *Classifier) RawScore(X mat.Matrix) ([]float64, error) {
	if !c.Fitted() {
		return nil, ErrNotFitted
	}
	rows, cols := X.Dims()
	if cols != c.NumFeatures {
		return nil, fmt.Errorf("expected %d features, got %d", c.NumFeatures, cols)
	}

	out := make([]float64, rows)
	row := make([]float64, cols)
	for i := 0; i < rows; i++ {
		mat.Row(row, i, X)
		score := c.InitScore
		for t := range c.Trees {
			score += c.Trees[t].Predict(row)
		}
		out[i] = score
	}
	return out, nil
}

// PredictProba returns P(label = 1) for every row of X.
func (c *Classifier) PredictProba(X mat.Matrix) ([]float64, error) {
	scores, err := c.RawScore(X)
	if err != nil {
		return nil, err
	}
	for i, s := range scores {
		scores[i] = sigmoid(s)
	}
	return scores, nil
}

// SplitCounts is the number of splits using each feature across all trees.
func (c *Classifier) SplitCounts() []int {
	counts := make([]int, c.NumFeatures)
	for _, t := range c.Trees {
		for _, n := range t.Nodes {
			if !n.Leaf {
				counts[n.Feature]++
			}
		}
	}
	return counts
}

func sampleRows(rng *rand.Rand, n int, fraction float64) []int {
	k := int(float64(n) * fraction)
	if k < 1 {
		k = 1
	}
	perm := rng.Perm(n)[:k]
	// keep ascending order so split scans stay deterministic for a given seed
	sort.Ints(perm)
	return perm
}

func sampleFeatures(rng *rand.Rand, n int, fraction float64) []int {
	k := int(math.Round(float64(n) * fraction))
	if k < 1 {
		k = 1
	}
	if k >= n {
		all := make([]int, n)
		for i := range all {
			all[i] = i
		}
		return all
	}
	perm := rng.Perm(n)[:k]
	sort.Ints(perm)
	return perm
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func logOdds(p float64) float64 {
	const eps = 1e-6
	p = math.Min(math.Max(p, eps), 1-eps)
	return math.Log(p / (1 - p))
}
