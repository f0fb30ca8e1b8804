package model

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math/rand"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// RandomForest bags decision trees: each tree is grown on a bootstrap
// sample with per-split feature subsampling, and prediction is the
// majority vote. Trees train concurrently, one goroutine per tree capped
// at the core count.
type RandomForest struct {
	Trees           int
	MaxDepth        int
	MinSamplesSplit int
	MaxFeatures     int
	Bootstrap       bool
	Seed            int64

	trees []*DecisionTree
}

// ForestOption configures a RandomForest.
type ForestOption func(*RandomForest)

func WithTrees(n int) ForestOption           { return func(rf *RandomForest) { rf.Trees = n } }
func WithForestDepth(d int) ForestOption     { return func(rf *RandomForest) { rf.MaxDepth = d } }
func WithForestFeatures(k int) ForestOption  { return func(rf *RandomForest) { rf.MaxFeatures = k } }
func WithBootstrap(b bool) ForestOption      { return func(rf *RandomForest) { rf.Bootstrap = b } }
func WithForestSeed(seed int64) ForestOption { return func(rf *RandomForest) { rf.Seed = seed } }

// NewRandomForest returns a forest with the defaults used by the pipeline.
func NewRandomForest(opts ...ForestOption) *RandomForest {
	rf := &RandomForest{
		Trees:           100,
		MinSamplesSplit: 2,
		Bootstrap:       true,
		Seed:            1,
	}
	for _, o := range opts {
		o(rf)
	}
	return rf
}

func (rf *RandomForest) Name() string { return "Random Forest" }

// Fit grows all trees. Each tree gets its own derived seed so the forest
// is reproducible while the trees stay decorrelated.
func (rf *RandomForest) Fit(X [][]float64, y []float64) error {
	if len(X) == 0 {
		return fmt.Errorf("forest: empty training set")
	}
	labels, err := intLabels(y)
	if err != nil {
		return fmt.Errorf("forest: %w", err)
	}

	n := len(X)
	rf.trees = make([]*DecisionTree, rf.Trees)
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := 0; i < rf.Trees; i++ {
		i := i
		g.Go(func() error {
			seed := rf.Seed + int64(i)
			rng := rand.New(rand.NewSource(seed))
			idx := make([]int, n)
			for j := range idx {
				if rf.Bootstrap {
					idx[j] = rng.Intn(n)
				} else {
					idx[j] = j
				}
			}
			tree := NewDecisionTree(
				WithMaxDepth(rf.MaxDepth),
				WithMinSamplesSplit(rf.MinSamplesSplit),
				WithMaxFeatures(rf.MaxFeatures),
				WithTreeSeed(seed),
			)
			if err := tree.fitInt(X, labels, idx); err != nil {
				return fmt.Errorf("forest: tree %d: %w", i, err)
			}
			rf.trees[i] = tree
			return nil
		})
	}
	return g.Wait()
}

// Predict returns the per-row majority vote across trees.
func (rf *RandomForest) Predict(X [][]float64) []float64 {
	votes := make([][]float64, len(rf.trees))
	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, tree := range rf.trees {
		i, tree := i, tree
		g.Go(func() error {
			votes[i] = tree.Predict(X)
			return nil
		})
	}
	_ = g.Wait() // tree prediction cannot fail

	out := make([]float64, len(X))
	forRows(len(X), func(row int) {
		counts := make(map[float64]int)
		for _, v := range votes {
			counts[v[row]]++
		}
		best, bestCount := 0.0, -1
		for cls, cnt := range counts {
			if cnt > bestCount || (cnt == bestCount && cls < best) {
				best, bestCount = cls, cnt
			}
		}
		out[row] = best
	})
	return out
}

// forestState is the gob form of a fitted forest.
type forestState struct {
	Trees           int
	MaxDepth        int
	MinSamplesSplit int
	MaxFeatures     int
	Bootstrap       bool
	Seed            int64
	Fitted          []treeState
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (rf *RandomForest) MarshalBinary() ([]byte, error) {
	state := forestState{
		Trees:           rf.Trees,
		MaxDepth:        rf.MaxDepth,
		MinSamplesSplit: rf.MinSamplesSplit,
		MaxFeatures:     rf.MaxFeatures,
		Bootstrap:       rf.Bootstrap,
		Seed:            rf.Seed,
		Fitted:          make([]treeState, len(rf.trees)),
	}
	for i, tree := range rf.trees {
		state.Fitted[i] = tree.state()
	}
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(state); err != nil {
		return nil, fmt.Errorf("forest: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (rf *RandomForest) UnmarshalBinary(data []byte) error {
	var state forestState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&state); err != nil {
		return fmt.Errorf("forest: decode: %w", err)
	}
	rf.Trees = state.Trees
	rf.MaxDepth = state.MaxDepth
	rf.MinSamplesSplit = state.MinSamplesSplit
	rf.MaxFeatures = state.MaxFeatures
	rf.Bootstrap = state.Bootstrap
	rf.Seed = state.Seed
	rf.trees = make([]*DecisionTree, len(state.Fitted))
	for i, ts := range state.Fitted {
		rf.trees[i] = &DecisionTree{}
		rf.trees[i].restore(ts)
	}
	return nil
}
