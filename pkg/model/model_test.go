package model

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// blobs generates two well-separated gaussian clusters, class 0 around
// (-2,-2) and class 1 around (2,2).
func blobs(n int, seed int64) ([][]float64, []float64) {
	rng := rand.New(rand.NewSource(seed))
	X := make([][]float64, n)
	y := make([]float64, n)
	for i := range X {
		center := -2.0
		if i%2 == 0 {
			center = 2.0
			y[i] = 1
		}
		X[i] = []float64{
			center + rng.NormFloat64()*0.5,
			center + rng.NormFloat64()*0.5,
		}
	}
	return X, y
}

func trainEval(t *testing.T, clf Classifier, minAcc float64) {
	t.Helper()
	XTrain, yTrain := blobs(200, 1)
	XTest, yTest := blobs(80, 2)

	require.NoError(t, clf.Fit(XTrain, yTrain))
	acc := Accuracy(yTest, clf.Predict(XTest))
	assert.GreaterOrEqual(t, acc, minAcc, "%s accuracy %v", clf.Name(), acc)
}

func TestLogisticRegressionSeparatesBlobs(t *testing.T) {
	trainEval(t, NewLogisticRegression(0.1, 100, 16, 1), 0.95)
}

func TestDecisionTreeSeparatesBlobs(t *testing.T) {
	trainEval(t, NewDecisionTree(WithMaxDepth(4), WithTreeSeed(1)), 0.95)
}

func TestRandomForestSeparatesBlobs(t *testing.T) {
	trainEval(t, NewRandomForest(WithTrees(25), WithForestDepth(4), WithForestSeed(1)), 0.95)
}

func TestGradientBoostingSeparatesBlobs(t *testing.T) {
	trainEval(t, NewGradientBoosting(50, 3, 0.1), 0.95)
}

func TestNaiveBayesSeparatesBlobs(t *testing.T) {
	trainEval(t, NewNaiveBayes(), 0.95)
}

func TestLinearSVCSeparatesBlobs(t *testing.T) {
	trainEval(t, NewLinearSVC(0.05, 100, 0.001, 1), 0.95)
}

func TestMLPSeparatesBlobs(t *testing.T) {
	trainEval(t, NewMLP([]int{8}, 0.1, 0.9, 300, 16, 1), 0.9)
}

func TestClassifiersRejectBadInput(t *testing.T) {
	models := []Classifier{
		NewLogisticRegression(0.1, 10, 8, 1),
		NewDecisionTree(),
		NewRandomForest(WithTrees(2)),
		NewGradientBoosting(5, 2, 0.1),
		NewNaiveBayes(),
		NewLinearSVC(0.1, 10, 0.001, 1),
		NewMLP([]int{4}, 0.1, 0.9, 10, 8, 1),
	}
	for _, clf := range models {
		assert.Error(t, clf.Fit(nil, nil), "%s on empty data", clf.Name())
		assert.Error(t, clf.Fit([][]float64{{1}, {2}}, []float64{1}), "%s on mismatched labels", clf.Name())
	}
}

func TestProbabilitiesAreProbabilities(t *testing.T) {
	X, y := blobs(100, 3)
	models := []ProbabilisticClassifier{
		NewLogisticRegression(0.1, 50, 16, 1),
		NewGradientBoosting(20, 2, 0.1),
		NewNaiveBayes(),
		NewMLP([]int{4}, 0.1, 0.9, 100, 16, 1),
	}
	for _, clf := range models {
		require.NoError(t, clf.Fit(X, y))
		for _, p := range clf.PredictProba(X) {
			assert.GreaterOrEqual(t, p, 0.0, clf.Name())
			assert.LessOrEqual(t, p, 1.0, clf.Name())
		}
	}
}
