package model

import (
	"fmt"
	"math/rand"

	"titanicml/pkg/dataset"
	"titanicml/pkg/nn"
	"titanicml/pkg/optim"
)

// LogisticRegression is a binary logistic model trained by mini-batch SGD
// on the cross-entropy loss.
type LogisticRegression struct {
	W []float64
	B float64

	LearningRate float64
	Epochs       int
	BatchSize    int
	Seed         int64
}

// NewLogisticRegression returns an untrained model with the given
// hyperparameters.
func NewLogisticRegression(lr float64, epochs, batchSize int, seed int64) *LogisticRegression {
	return &LogisticRegression{LearningRate: lr, Epochs: epochs, BatchSize: batchSize, Seed: seed}
}

func (m *LogisticRegression) Name() string { return "Logistic Regression" }

// Fit trains with mini-batch gradient descent. Weights start at small
// seeded random values to keep runs reproducible.
func (m *LogisticRegression) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return fmt.Errorf("logistic: empty training set")
	}
	if len(X) != len(y) {
		return fmt.Errorf("logistic: %d rows vs %d labels", len(X), len(y))
	}
	rng := rand.New(rand.NewSource(m.Seed))
	m.W = make([]float64, len(X[0]))
	for i := range m.W {
		m.W[i] = rng.NormFloat64() * 0.01
	}
	m.B = 0

	opt := optim.NewSGD(m.LearningRate)
	for ep := 0; ep < m.Epochs; ep++ {
		for batch := range dataset.Batches(X, y, m.BatchSize) {
			if len(batch.X[0]) != len(m.W) {
				return fmt.Errorf("logistic: batch has %d features, model has %d", len(batch.X[0]), len(m.W))
			}
			p := m.PredictProba(batch.X)
			_, dy := nn.BCE(batch.Y, p)

			gW := make([]float64, len(m.W))
			gB := 0.0
			for i, row := range batch.X {
				d := dy[i]
				for j, v := range row {
					gW[j] += d * v
				}
				gB += d
			}
			opt.Step(m.W, gW)
			m.B -= m.LearningRate * gB
		}
	}
	return nil
}

// PredictProba returns p(y=1) per row, computed on a worker per core.
func (m *LogisticRegression) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	forRows(len(X), func(i int) {
		sum := m.B
		for j, v := range X[i] {
			sum += m.W[j] * v
		}
		out[i] = nn.Sigmoid(sum)
	})
	return out
}

// Predict thresholds the probabilities at 0.5.
func (m *LogisticRegression) Predict(X [][]float64) []float64 {
	return Threshold(m.PredictProba(X), 0.5)
}
