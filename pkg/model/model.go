// Package model implements the binary classifiers the pipeline trains and
// compares: logistic regression, CART decision tree, random forest,
// gradient boosting, Gaussian naive Bayes, a linear SVC and a multilayer
// perceptron. All operate on dense float64 feature rows with 0/1 labels.
package model

import (
	"runtime"
	"sync"
)

// Classifier is the common contract the pipeline trains and evaluates.
type Classifier interface {
	// Name is the human-readable model name used in the report.
	Name() string
	// Fit trains on rows X with 0/1 labels y.
	Fit(X [][]float64, y []float64) error
	// Predict returns a 0/1 label per row.
	Predict(X [][]float64) []float64
}

// ProbabilisticClassifier additionally exposes p(y=1).
type ProbabilisticClassifier interface {
	Classifier
	PredictProba(X [][]float64) []float64
}

// forRows runs fn over row indices [0,n) on a worker per CPU core.
func forRows(n int, fn func(i int)) {
	workers := runtime.GOMAXPROCS(0)
	if workers > n {
		workers = n
	}
	if workers <= 1 {
		for i := 0; i < n; i++ {
			fn(i)
		}
		return
	}
	per := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * per
		end := start + per
		if end > n {
			end = n
		}
		if start >= end {
			continue
		}
		wg.Add(1)
		go func(s, e int) {
			defer wg.Done()
			for i := s; i < e; i++ {
				fn(i)
			}
		}(start, end)
	}
	wg.Wait()
}
