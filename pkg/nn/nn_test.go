package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSigmoid(t *testing.T) {
	assert.InDelta(t, 0.5, Sigmoid(0), 1e-12)
	assert.InDelta(t, 1.0, Sigmoid(40), 1e-12)
	assert.InDelta(t, 0.0, Sigmoid(-40), 1e-12)
	s := Sigmoid(1.3)
	assert.InDelta(t, s*(1-s), SigmoidPrimeFromOutput(s), 1e-12)
}

func TestReLUAndTanh(t *testing.T) {
	assert.Equal(t, 0.0, ReLU(-2))
	assert.Equal(t, 3.0, ReLU(3))
	assert.Equal(t, 0.0, ReLUPrime(-2))
	assert.Equal(t, 1.0, ReLUPrime(3))

	tv := Tanh(0.7)
	assert.InDelta(t, 1-tv*tv, TanhPrimeFromOutput(tv), 1e-12)
}

func TestBCE(t *testing.T) {
	loss, grad := BCE([]float64{1, 0}, []float64{0.9, 0.1})
	assert.InDelta(t, -math.Log(0.9), loss, 1e-12)
	assert.InDelta(t, (0.9-1)/2, grad[0], 1e-12)
	assert.InDelta(t, 0.1/2, grad[1], 1e-12)

	// extreme predictions stay finite
	loss, _ = BCE([]float64{1}, []float64{0})
	assert.False(t, math.IsInf(loss, 0))
}

func TestMSE(t *testing.T) {
	loss, grad := MSE([]float64{1, 2}, []float64{3, 2})
	assert.InDelta(t, 2.0, loss, 1e-12)
	assert.InDelta(t, 2.0, grad[0], 1e-12)
	assert.InDelta(t, 0.0, grad[1], 1e-12)
}
