// Package nn provides the activations and losses used by the gradient
// trained classifiers.
package nn

import "math"

func Sigmoid(x float64) float64 { return 1.0 / (1.0 + math.Exp(-x)) }

// SigmoidPrimeFromOutput computes the sigmoid derivative from an already
// activated value, the form backpropagation wants.
func SigmoidPrimeFromOutput(s float64) float64 { return s * (1 - s) }

func ReLU(x float64) float64 {
	if x > 0 {
		return x
	}
	return 0
}

func ReLUPrime(x float64) float64 {
	if x > 0 {
		return 1
	}
	return 0
}

func Tanh(x float64) float64 { return math.Tanh(x) }

func TanhPrimeFromOutput(t float64) float64 { return 1 - t*t }
