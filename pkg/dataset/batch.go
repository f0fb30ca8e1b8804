package dataset

// Batch is one mini-batch of training rows.
type Batch struct {
	X [][]float64
	Y []float64
}

// Batches streams X and y as mini-batches of the given size over a channel.
// The final batch may be short. The channel is closed once all rows have
// been sent, so a training epoch is a plain range over the result.
func Batches(X [][]float64, y []float64, size int) <-chan Batch {
	if size <= 0 {
		size = len(X)
	}
	out := make(chan Batch)
	go func() {
		defer close(out)
		for start := 0; start < len(X); start += size {
			end := start + size
			if end > len(X) {
				end = len(X)
			}
			out <- Batch{X: X[start:end], Y: y[start:end]}
		}
	}()
	return out
}
