package nn

import "math"

// BCE returns the binary cross-entropy loss and its gradient taken through
// the sigmoid, (p-y)/n per element, so callers can apply it to the logit
// directly. Predictions are clamped away from 0 and 1 so the log stays
// finite.
func BCE(yTrue, yPred []float64) (float64, []float64) {
	n := len(yTrue)
	sum := 0.0
	grad := make([]float64, n)
	for i := range yTrue {
		p := math.Min(math.Max(yPred[i], 1e-12), 1-1e-12)
		y := yTrue[i]
		sum += -(y*math.Log(p) + (1-y)*math.Log(1-p))
		grad[i] = (p - y) / float64(n)
	}
	return sum / float64(n), grad
}

// MSE returns the mean squared error and its gradient with respect to the
// predictions.
func MSE(yTrue, yPred []float64) (float64, []float64) {
	n := len(yTrue)
	sum := 0.0
	grad := make([]float64, n)
	for i := range yTrue {
		e := yPred[i] - yTrue[i]
		sum += e * e
		grad[i] = 2 * e / float64(n)
	}
	return sum / float64(n), grad
}
