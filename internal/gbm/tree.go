package gbm

import (
	"math"
	"sort"
)

// Node is either a split (Leaf false) or a leaf carrying its output value.
// NaN inputs follow DefaultLeft.
type Node struct {
	Feature     int     `json:"feature,omitempty"`
	Threshold   float64 `json:"threshold,omitempty"`
	DefaultLeft bool    `json:"default_left,omitempty"`
	Left        int     `json:"left,omitempty"`
	Right       int     `json:"right,omitempty"`
	Leaf        bool    `json:"leaf,omitempty"`
	Value       float64 `json:"value,omitempty"`
}

// Tree stores nodes in a flat slice; index 0 is the root.
type Tree struct {
	Nodes []Node `json:"nodes"`
}

// Predict walks row down the tree and returns the leaf value.
func (t *Tree) Predict(row []float64) float64 {
	return t.walk(func(f int) float64 { return row[f] })
}

func (t *Tree) predictColumns(columns [][]float64, i int) float64 {
	return t.walk(func(f int) float64 { return columns[f][i] })
}

func (t *Tree) walk(feature func(int) float64) float64 {
	i := 0
	for !t.Nodes[i].Leaf {
		n := &t.Nodes[i]
		v := feature(n.Feature)
		switch {
		case math.IsNaN(v):
			if n.DefaultLeft {
				i = n.Left
			} else {
				i = n.Right
			}
		case v <= n.Threshold:
			i = n.Left
		default:
			i = n.Right
		}
	}
	return t.Nodes[i].Value
}

type split struct {
	ok          bool
	feature     int
	threshold   float64
	defaultLeft bool
	gain        float64
}

type leaf struct {
	node       int
	rows       []int
	grad, hess float64
	best       split
}

type builder struct {
	params  Params
	columns [][]float64
	grad    []float64
	hess    []float64
}

// grow builds one tree leaf-wise: the leaf with the largest gain is split
// next until NumLeaves is reached or no split improves the loss.
func (b *builder) grow(rows []int, features []int) Tree {
	tree := Tree{Nodes: []Node{{Leaf: true}}}

	root := b.newLeaf(0, rows, features)
	leaves := []*leaf{root}

	for len(leaves) < b.params.NumLeaves {
		bestIdx := -1
		for i, l := range leaves {
			if l.best.ok && (bestIdx < 0 || l.best.gain > leaves[bestIdx].best.gain) {
				bestIdx = i
			}
		}
		if bestIdx < 0 {
			break
		}

		parent := leaves[bestIdx]
		s := parent.best
		leftRows, rightRows := b.partition(parent.rows, s)

		leftID, rightID := len(tree.Nodes), len(tree.Nodes)+1
		tree.Nodes[parent.node] = Node{
			Feature:     s.feature,
			Threshold:   s.threshold,
			DefaultLeft: s.defaultLeft,
			Left:        leftID,
			Right:       rightID,
		}
		tree.Nodes = append(tree.Nodes, Node{Leaf: true}, Node{Leaf: true})

		leaves[bestIdx] = b.newLeaf(leftID, leftRows, features)
		leaves = append(leaves, b.newLeaf(rightID, rightRows, features))
	}

	for _, l := range leaves {
		tree.Nodes[l.node].Value = b.params.LearningRate * leafOutput(l.grad, l.hess, b.params)
	}
	return tree
}

func (b *builder) newLeaf(node int, rows []int, features []int) *leaf {
	l := &leaf{node: node, rows: rows}
	for _, r := range rows {
		l.grad += b.grad[r]
		l.hess += b.hess[r]
	}
	l.best = b.findSplit(l, features)
	return l
}

func (b *builder) partition(rows []int, s split) (left, right []int) {
	col := b.columns[s.feature]
	for _, r := range rows {
		v := col[r]
		goLeft := v <= s.threshold
		if math.IsNaN(v) {
			goLeft = s.defaultLeft
		}
		if goLeft {
			left = append(left, r)
		} else {
			right = append(right, r)
		}
	}
	return left, right
}

type sample struct {
	value      float64
	grad, hess float64
}

// findSplit scans every candidate threshold of every sampled feature. Rows
// with a missing value are tried on both sides.
func (b *builder) findSplit(l *leaf, features []int) split {
	best := split{}
	minCount := b.params.MinChildSamples
	if len(l.rows) < 2*minCount {
		return best
	}
	parentScore := leafScore(l.grad, l.hess, b.params)

	samples := make([]sample, 0, len(l.rows))
	for _, f := range features {
		col := b.columns[f]
		samples = samples[:0]
		var missGrad, missHess float64
		missCount := 0
		for _, r := range l.rows {
			v := col[r]
			if math.IsNaN(v) {
				missGrad += b.grad[r]
				missHess += b.hess[r]
				missCount++
				continue
			}
			samples = append(samples, sample{value: v, grad: b.grad[r], hess: b.hess[r]})
		}
		if len(samples) == 0 {
			continue
		}
		sort.Slice(samples, func(i, j int) bool { return samples[i].value < samples[j].value })

		var leftGrad, leftHess float64
		for i := 0; i < len(samples); i++ {
			leftGrad += samples[i].grad
			leftHess += samples[i].hess
			last := i == len(samples)-1
			if !last && samples[i].value == samples[i+1].value {
				continue
			}
			threshold := samples[i].value
			if !last {
				threshold = (samples[i].value + samples[i+1].value) / 2
			}
			leftCount := i + 1
			rightCount := len(samples) - leftCount

			for _, missLeft := range []bool{false, true} {
				if missCount == 0 && missLeft {
					continue
				}
				if last && (missLeft || missCount == 0) {
					// nothing would go right
					continue
				}
				lg, lh, lc := leftGrad, leftHess, leftCount
				rg, rh, rc := l.grad-leftGrad-missGrad, l.hess-leftHess-missHess, rightCount
				if missLeft {
					lg, lh, lc = lg+missGrad, lh+missHess, lc+missCount
				} else {
					rg, rh, rc = rg+missGrad, rh+missHess, rc+missCount
				}
				if lc < minCount || rc < minCount {
					continue
				}
				if lh < b.params.MinChildWeight || rh < b.params.MinChildWeight {
					continue
				}
				gain := leafScore(lg, lh, b.params) + leafScore(rg, rh, b.params) - parentScore
				if gain > 1e-12 && (!best.ok || gain > best.gain) {
					best = split{
						ok:          true,
						feature:     f,
						threshold:   threshold,
						defaultLeft: missLeft,
						gain:        gain,
					}
				}
			}
		}
	}
	return best
}

func thresholdL1(g, alpha float64) float64 {
	switch {
	case g > alpha:
		return g - alpha
	case g < -alpha:
		return g + alpha
	}
	return 0
}

func leafScore(grad, hess float64, p Params) float64 {
	g := thresholdL1(grad, p.RegAlpha)
	return g * g / (hess + p.RegLambda)
}

func leafOutput(grad, hess float64, p Params) float64 {
	if hess+p.RegLambda == 0 {
		return 0
	}
	return -thresholdL1(grad, p.RegAlpha) / (hess + p.RegLambda)
}
