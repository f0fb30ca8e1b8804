package model

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"titanicml/pkg/dataset"
	"titanicml/pkg/nn"
	"titanicml/pkg/optim"
)

// MLP is a fully-connected feed-forward network for binary classification:
// sigmoid hidden layers, a single sigmoid output unit, cross-entropy loss,
// trained by mini-batch gradient descent with momentum. Layer weights are
// gonum dense matrices so the forward and backward passes are matrix
// products.
type MLP struct {
	Hidden       []int
	LearningRate float64
	Momentum     float64
	Epochs       int
	BatchSize    int
	Seed         int64

	weights []*mat.Dense // layer l: in x out
	biases  [][]float64
}

// NewMLP returns an untrained network with the given hidden layer sizes.
func NewMLP(hidden []int, lr, momentum float64, epochs, batchSize int, seed int64) *MLP {
	return &MLP{
		Hidden:       hidden,
		LearningRate: lr,
		Momentum:     momentum,
		Epochs:       epochs,
		BatchSize:    batchSize,
		Seed:         seed,
	}
}

func (m *MLP) Name() string { return "Multilayer Perceptron" }

// Fit trains the network.
func (m *MLP) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return fmt.Errorf("mlp: empty training set")
	}
	if len(X) != len(y) {
		return fmt.Errorf("mlp: %d rows vs %d labels", len(X), len(y))
	}

	sizes := append([]int{len(X[0])}, m.Hidden...)
	sizes = append(sizes, 1)
	rng := rand.New(rand.NewSource(m.Seed))
	m.weights = make([]*mat.Dense, len(sizes)-1)
	m.biases = make([][]float64, len(sizes)-1)
	for l := range m.weights {
		in, out := sizes[l], sizes[l+1]
		data := make([]float64, in*out)
		// Xavier-style scale keeps sigmoid units out of saturation
		scale := 1.0 / float64(in)
		for i := range data {
			data[i] = rng.NormFloat64() * scale
		}
		m.weights[l] = mat.NewDense(in, out, data)
		m.biases[l] = make([]float64, out)
	}

	opt := optim.NewMomentum(m.LearningRate, m.Momentum)
	for ep := 0; ep < m.Epochs; ep++ {
		for batch := range dataset.Batches(X, y, m.BatchSize) {
			m.step(batch.X, batch.Y, opt)
		}
	}
	return nil
}

// step runs one forward/backward pass over a mini-batch and applies the
// updates.
func (m *MLP) step(X [][]float64, y []float64, opt *optim.Momentum) {
	n := len(X)
	activations := m.forward(denseFromRows(X))

	// output delta for sigmoid + cross-entropy: (p - y) / n
	last := activations[len(activations)-1]
	delta := mat.NewDense(n, 1, nil)
	for i := 0; i < n; i++ {
		delta.Set(i, 0, (last.At(i, 0)-y[i])/float64(n))
	}

	for l := len(m.weights) - 1; l >= 0; l-- {
		prev := activations[l]

		var gW mat.Dense
		gW.Mul(prev.T(), delta)
		_, out := delta.Dims()
		gB := make([]float64, out)
		for i := 0; i < n; i++ {
			for j := 0; j < out; j++ {
				gB[j] += delta.At(i, j)
			}
		}

		if l > 0 {
			var next mat.Dense
			next.Mul(delta, m.weights[l].T())
			rows, cols := next.Dims()
			for i := 0; i < rows; i++ {
				for j := 0; j < cols; j++ {
					a := prev.At(i, j)
					next.Set(i, j, next.At(i, j)*nn.SigmoidPrimeFromOutput(a))
				}
			}
			delta = &next
		}

		opt.Step(m.weights[l].RawMatrix().Data, gW.RawMatrix().Data)
		opt.Step(m.biases[l], gB)
	}
}

// forward returns the activations of every layer, input included.
func (m *MLP) forward(X *mat.Dense) []*mat.Dense {
	activations := make([]*mat.Dense, 0, len(m.weights)+1)
	activations = append(activations, X)
	a := X
	for l, w := range m.weights {
		var z mat.Dense
		z.Mul(a, w)
		rows, cols := z.Dims()
		for i := 0; i < rows; i++ {
			for j := 0; j < cols; j++ {
				z.Set(i, j, nn.Sigmoid(z.At(i, j)+m.biases[l][j]))
			}
		}
		a = &z
		activations = append(activations, a)
	}
	return activations
}

// PredictProba returns p(y=1) per row.
func (m *MLP) PredictProba(X [][]float64) []float64 {
	if len(X) == 0 {
		return nil
	}
	activations := m.forward(denseFromRows(X))
	last := activations[len(activations)-1]
	out := make([]float64, len(X))
	for i := range out {
		out[i] = last.At(i, 0)
	}
	return out
}

// Predict thresholds the probabilities at 0.5.
func (m *MLP) Predict(X [][]float64) []float64 {
	return Threshold(m.PredictProba(X), 0.5)
}

func denseFromRows(X [][]float64) *mat.Dense {
	n, d := len(X), len(X[0])
	out := mat.NewDense(n, d, nil)
	for i, row := range X {
		out.SetRow(i, row)
	}
	return out
}
