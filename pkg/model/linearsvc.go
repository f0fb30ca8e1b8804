package model

import (
	"fmt"
	"math/rand"

	"titanicml/pkg/dataset"
)

// LinearSVC is a linear support-vector classifier trained by mini-batch
// subgradient descent on the L2-regularized hinge loss. Labels are mapped
// to -1/+1 internally; predictions come back as 0/1.
type LinearSVC struct {
	W []float64
	B float64

	LearningRate float64
	Epochs       int
	Lambda       float64
	BatchSize    int
	Seed         int64
}

// NewLinearSVC returns an untrained classifier.
func NewLinearSVC(lr float64, epochs int, lambda float64, seed int64) *LinearSVC {
	return &LinearSVC{LearningRate: lr, Epochs: epochs, Lambda: lambda, BatchSize: 32, Seed: seed}
}

func (m *LinearSVC) Name() string { return "Linear SVC" }

// Fit minimizes lambda/2*|w|^2 + mean(max(0, 1-y*(w.x+b))).
func (m *LinearSVC) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return fmt.Errorf("svc: empty training set")
	}
	if len(X) != len(y) {
		return fmt.Errorf("svc: %d rows vs %d labels", len(X), len(y))
	}
	rng := rand.New(rand.NewSource(m.Seed))
	m.W = make([]float64, len(X[0]))
	for i := range m.W {
		m.W[i] = rng.NormFloat64() * 0.01
	}
	m.B = 0

	for ep := 0; ep < m.Epochs; ep++ {
		for batch := range dataset.Batches(X, y, m.BatchSize) {
			gW := make([]float64, len(m.W))
			gB := 0.0
			for i, row := range batch.X {
				ys := 2*batch.Y[i] - 1 // -1/+1
				margin := m.B
				for j, v := range row {
					margin += m.W[j] * v
				}
				if ys*margin < 1 {
					for j, v := range row {
						gW[j] -= ys * v
					}
					gB -= ys
				}
			}
			scale := 1 / float64(len(batch.X))
			for j := range m.W {
				m.W[j] -= m.LearningRate * (gW[j]*scale + m.Lambda*m.W[j])
			}
			m.B -= m.LearningRate * gB * scale
		}
	}
	return nil
}

// Predict returns 1 where the decision value is non-negative.
func (m *LinearSVC) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	forRows(len(X), func(i int) {
		sum := m.B
		for j, v := range X[i] {
			sum += m.W[j] * v
		}
		if sum >= 0 {
			out[i] = 1
		}
	})
	return out
}
