// Package optim holds the gradient-descent update rules shared by the
// linear models and the network.
package optim

// SGD applies plain stochastic gradient descent with a fixed learning rate.
type SGD struct{ LearningRate float64 }

func NewSGD(lr float64) *SGD { return &SGD{LearningRate: lr} }

// Step updates weights in place from the accumulated gradients.
func (o *SGD) Step(weights, grads []float64) {
	for i := range weights {
		weights[i] -= o.LearningRate * grads[i]
	}
}

// Momentum is SGD with classical momentum. Velocity buffers are keyed per
// parameter slice length on first use, so one optimizer can serve several
// layers of differing sizes.
type Momentum struct {
	LearningRate float64
	Beta         float64

	velocity map[*float64][]float64
}

func NewMomentum(lr, beta float64) *Momentum {
	return &Momentum{LearningRate: lr, Beta: beta, velocity: make(map[*float64][]float64)}
}

// Step updates weights in place, carrying a velocity term across calls for
// the same parameter slice.
func (o *Momentum) Step(weights, grads []float64) {
	if len(weights) == 0 {
		return
	}
	key := &weights[0]
	v, ok := o.velocity[key]
	if !ok || len(v) != len(weights) {
		v = make([]float64, len(weights))
		o.velocity[key] = v
	}
	for i := range weights {
		v[i] = o.Beta*v[i] + grads[i]
		weights[i] -= o.LearningRate * v[i]
	}
}
