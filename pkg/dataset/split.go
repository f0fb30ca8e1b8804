package dataset

import "math/rand"

// Split partitions a frame into train and test frames by row, shuffling with
// the given seed. A fixed seed yields the same partition on every run.
func Split(f *Frame, testRatio float64, seed int64) (train, test *Frame) {
	n := f.Len()
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	nTest := int(float64(n) * testRatio)
	if nTest < 1 {
		nTest = 1
	}
	test = f.Select(perm[:nTest])
	train = f.Select(perm[nTest:])
	return train, test
}

// KFold partitions row indices 0..n-1 into k shuffled folds of near-equal
// size.
func KFold(n, k int, seed int64) [][]int {
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	folds := make([][]int, k)
	for i, idx := range perm {
		folds[i%k] = append(folds[i%k], idx)
	}
	return folds
}
