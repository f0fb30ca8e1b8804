// Package report renders the evaluation results: the per-model accuracy
// lines on stdout and, optionally, an accuracy bar chart PNG.
package report

import (
	"fmt"
	"io"
	"time"
)

// Result is one model's held-out evaluation.
type Result struct {
	Model     string
	Accuracy  float64
	Precision float64
	Recall    float64
	F1        float64
	TrainTime time.Duration
}

// Write prints one line per model, accuracy formatted to two decimals.
// Verbose adds precision/recall/F1.
func Write(w io.Writer, results []Result, verbose bool) {
	for _, r := range results {
		fmt.Fprintf(w, "%s accuracy: %.2f\n", r.Model, r.Accuracy)
		if verbose {
			fmt.Fprintf(w, "  precision: %.2f  recall: %.2f  f1: %.2f  train: %s\n",
				r.Precision, r.Recall, r.F1, r.TrainTime.Round(time.Millisecond))
		}
	}
}
