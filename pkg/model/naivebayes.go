package model

import (
	"fmt"
	"math"
)

// NaiveBayes is a Gaussian naive Bayes classifier: per class, each feature
// is modeled as an independent normal distribution. Variances get a small
// additive floor so constant features stay well-defined.
type NaiveBayes struct {
	Priors [2]float64
	Mean   [2][]float64
	Var    [2][]float64
}

// NewNaiveBayes returns an untrained classifier.
func NewNaiveBayes() *NaiveBayes { return &NaiveBayes{} }

func (m *NaiveBayes) Name() string { return "Naive Bayes" }

// Fit estimates class priors and per-class feature means and variances.
func (m *NaiveBayes) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return fmt.Errorf("naivebayes: empty training set")
	}
	if len(X) != len(y) {
		return fmt.Errorf("naivebayes: %d rows vs %d labels", len(X), len(y))
	}
	d := len(X[0])
	var counts [2]int
	for cls := 0; cls < 2; cls++ {
		m.Mean[cls] = make([]float64, d)
		m.Var[cls] = make([]float64, d)
	}
	for i, row := range X {
		cls := int(y[i])
		if cls != 0 && cls != 1 {
			return fmt.Errorf("naivebayes: label %v is not 0/1", y[i])
		}
		counts[cls]++
		for j, v := range row {
			m.Mean[cls][j] += v
		}
	}
	for cls := 0; cls < 2; cls++ {
		if counts[cls] == 0 {
			return fmt.Errorf("naivebayes: class %d absent from training set", cls)
		}
		for j := range m.Mean[cls] {
			m.Mean[cls][j] /= float64(counts[cls])
		}
	}
	for i, row := range X {
		cls := int(y[i])
		for j, v := range row {
			dlt := v - m.Mean[cls][j]
			m.Var[cls][j] += dlt * dlt
		}
	}
	for cls := 0; cls < 2; cls++ {
		m.Priors[cls] = float64(counts[cls]) / float64(len(X))
		for j := range m.Var[cls] {
			m.Var[cls][j] = m.Var[cls][j]/float64(counts[cls]) + 1e-9
		}
	}
	return nil
}

// PredictProba returns the posterior p(y=1) per row.
func (m *NaiveBayes) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	forRows(len(X), func(i int) {
		var logp [2]float64
		for cls := 0; cls < 2; cls++ {
			lp := math.Log(m.Priors[cls])
			for j, v := range X[i] {
				variance := m.Var[cls][j]
				dlt := v - m.Mean[cls][j]
				lp += -0.5*math.Log(2*math.Pi*variance) - dlt*dlt/(2*variance)
			}
			logp[cls] = lp
		}
		// log-sum-exp for a stable posterior
		hi := math.Max(logp[0], logp[1])
		den := math.Exp(logp[0]-hi) + math.Exp(logp[1]-hi)
		out[i] = math.Exp(logp[1]-hi) / den
	})
	return out
}

// Predict thresholds the posterior at 0.5.
func (m *NaiveBayes) Predict(X [][]float64) []float64 {
	return Threshold(m.PredictProba(X), 0.5)
}
