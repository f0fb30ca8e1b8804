package model

import (
	"fmt"
	"math"
	"sort"

	"titanicml/pkg/nn"
)

// GradientBoosting is binary gradient-boosted trees on the logistic loss:
// the score starts at the training log-odds and each round adds a
// shrinkage-scaled regression tree fit to the current gradient, with
// Newton leaf values.
type GradientBoosting struct {
	Trees        int
	MaxDepth     int
	LearningRate float64
	MinLeaf      int
	Lambda       float64 // L2 on leaf values

	base  float64
	trees []*gbNode
}

// NewGradientBoosting returns an untrained booster.
func NewGradientBoosting(trees, maxDepth int, learningRate float64) *GradientBoosting {
	return &GradientBoosting{
		Trees:        trees,
		MaxDepth:     maxDepth,
		LearningRate: learningRate,
		MinLeaf:      5,
		Lambda:       1,
	}
}

func (m *GradientBoosting) Name() string { return "Gradient-Boosted Trees" }

// gbNode is one node of a boosting round's regression tree.
type gbNode struct {
	leaf      bool
	feature   int
	threshold float64
	value     float64
	left      *gbNode
	right     *gbNode
}

// Fit runs the boosting rounds.
func (m *GradientBoosting) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return fmt.Errorf("gbt: empty training set")
	}
	if len(X) != len(y) {
		return fmt.Errorf("gbt: %d rows vs %d labels", len(X), len(y))
	}

	pos := 0.0
	for _, v := range y {
		if v != 0 && v != 1 {
			return fmt.Errorf("gbt: label %v is not 0/1", v)
		}
		pos += v
	}
	p := math.Min(math.Max(pos/float64(len(y)), 1e-6), 1-1e-6)
	m.base = math.Log(p / (1 - p))
	m.trees = m.trees[:0]

	score := make([]float64, len(X))
	for i := range score {
		score[i] = m.base
	}
	grad := make([]float64, len(X))
	hess := make([]float64, len(X))
	idx := allIndices(len(X))

	for round := 0; round < m.Trees; round++ {
		for i := range X {
			pi := nn.Sigmoid(score[i])
			grad[i] = y[i] - pi
			hess[i] = pi * (1 - pi)
		}
		tree := m.growReg(X, grad, hess, idx, 0)
		m.trees = append(m.trees, tree)
		for i, row := range X {
			score[i] += m.LearningRate * evalReg(tree, row)
		}
	}
	return nil
}

// growReg builds one regression tree on the gradient/hessian, choosing
// splits by the regularized gain G^2/(H+lambda).
func (m *GradientBoosting) growReg(X [][]float64, grad, hess []float64, idx []int, depth int) *gbNode {
	var gSum, hSum float64
	for _, ii := range idx {
		gSum += grad[ii]
		hSum += hess[ii]
	}
	leaf := &gbNode{leaf: true, value: gSum / (hSum + m.Lambda)}
	if depth >= m.MaxDepth || len(idx) < 2*m.MinLeaf {
		return leaf
	}

	parentScore := gSum * gSum / (hSum + m.Lambda)
	bestGain := 0.0
	bestFeature, bestSplit := -1, 0.0
	var bestLeft, bestRight []int

	nFeatures := len(X[0])
	cells := make([]cell, 0, len(idx))
	for f := 0; f < nFeatures; f++ {
		cells = cells[:0]
		for _, ii := range idx {
			if !math.IsNaN(X[ii][f]) {
				cells = append(cells, cell{X[ii][f], ii})
			}
		}
		if len(cells) < 2*m.MinLeaf {
			continue
		}
		sort.Slice(cells, func(a, b int) bool { return cells[a].v < cells[b].v })

		gl, hl := 0.0, 0.0
		for s := 0; s < len(cells)-1; s++ {
			gl += grad[cells[s].i]
			hl += hess[cells[s].i]
			if cells[s].v == cells[s+1].v {
				continue
			}
			nl, nr := s+1, len(cells)-s-1
			if nl < m.MinLeaf || nr < m.MinLeaf {
				continue
			}
			gr, hr := gSum-gl, hSum-hl
			gain := gl*gl/(hl+m.Lambda) + gr*gr/(hr+m.Lambda) - parentScore
			if gain > bestGain {
				bestGain = gain
				bestFeature = f
				bestSplit = (cells[s].v + cells[s+1].v) / 2
				bestLeft, bestRight = nil, nil
			}
		}
		if bestFeature == f && bestLeft == nil {
			// NaN rows follow the left branch
			for _, ii := range idx {
				if v := X[ii][f]; math.IsNaN(v) || v <= bestSplit {
					bestLeft = append(bestLeft, ii)
				} else {
					bestRight = append(bestRight, ii)
				}
			}
		}
	}
	if bestFeature < 0 || bestGain <= 0 {
		return leaf
	}
	return &gbNode{
		feature:   bestFeature,
		threshold: bestSplit,
		left:      m.growReg(X, grad, hess, bestLeft, depth+1),
		right:     m.growReg(X, grad, hess, bestRight, depth+1),
	}
}

func evalReg(node *gbNode, x []float64) float64 {
	for !node.leaf {
		if v := x[node.feature]; math.IsNaN(v) || v <= node.threshold {
			node = node.left
		} else {
			node = node.right
		}
	}
	return node.value
}

// PredictProba returns p(y=1) per row.
func (m *GradientBoosting) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	forRows(len(X), func(i int) {
		score := m.base
		for _, tree := range m.trees {
			score += m.LearningRate * evalReg(tree, X[i])
		}
		out[i] = nn.Sigmoid(score)
	})
	return out
}

// Predict thresholds the probabilities at 0.5.
func (m *GradientBoosting) Predict(X [][]float64) []float64 {
	return Threshold(m.PredictProba(X), 0.5)
}
