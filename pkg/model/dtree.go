package model

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
)

// DecisionTree is a CART classifier: greedy binary splits chosen by gini or
// entropy gain, with midpoint thresholds for numeric features and equality
// splits for small integer-coded categorical features. Rows with a NaN at
// the split feature follow the left branch at fit time and the heavier
// branch at predict time.
type DecisionTree struct {
	MaxDepth        int // 0 means unlimited
	MinSamplesSplit int
	MinSamplesLeaf  int
	Criterion       string // "gini" or "entropy"
	MaxFeatures     int    // 0 means all features
	Seed            int64

	root    *treeNode
	classes []int
}

// treeNode fields are exported for gob persistence only.
type treeNode struct {
	Leaf      bool
	Feature   int
	Threshold float64
	Cat       bool // equality split: x == Threshold goes left
	N         int
	Probas    []float64
	Left      *treeNode
	Right     *treeNode
}

// TreeOption configures a DecisionTree.
type TreeOption func(*DecisionTree)

func WithMaxDepth(d int) TreeOption        { return func(t *DecisionTree) { t.MaxDepth = d } }
func WithMinSamplesSplit(n int) TreeOption { return func(t *DecisionTree) { t.MinSamplesSplit = n } }
func WithMinSamplesLeaf(n int) TreeOption  { return func(t *DecisionTree) { t.MinSamplesLeaf = n } }
func WithCriterion(c string) TreeOption    { return func(t *DecisionTree) { t.Criterion = c } }
func WithMaxFeatures(k int) TreeOption     { return func(t *DecisionTree) { t.MaxFeatures = k } }
func WithTreeSeed(seed int64) TreeOption   { return func(t *DecisionTree) { t.Seed = seed } }

// NewDecisionTree returns a tree with the defaults used by the pipeline.
func NewDecisionTree(opts ...TreeOption) *DecisionTree {
	t := &DecisionTree{
		MinSamplesSplit: 2,
		MinSamplesLeaf:  1,
		Criterion:       "gini",
		Seed:            1,
	}
	for _, o := range opts {
		o(t)
	}
	return t
}

func (t *DecisionTree) Name() string { return "Decision Tree" }

// Fit grows the tree on X and integral 0/1 labels.
func (t *DecisionTree) Fit(X [][]float64, y []float64) error {
	labels, err := intLabels(y)
	if err != nil {
		return fmt.Errorf("dtree: %w", err)
	}
	return t.fitInt(X, labels, allIndices(len(X)))
}

// fitInt grows the tree on the given row subset; the forest passes
// bootstrap index sets through here.
func (t *DecisionTree) fitInt(X [][]float64, y []int, idx []int) error {
	if len(X) == 0 || len(idx) == 0 {
		return fmt.Errorf("dtree: empty training set")
	}
	if len(y) != len(X) {
		return fmt.Errorf("dtree: %d rows vs %d labels", len(X), len(y))
	}
	p := len(X[0])
	for _, row := range X {
		if len(row) != p {
			return fmt.Errorf("dtree: ragged feature rows")
		}
	}

	seen := map[int]struct{}{}
	t.classes = nil
	for _, ii := range idx {
		if _, ok := seen[y[ii]]; !ok {
			seen[y[ii]] = struct{}{}
			t.classes = append(t.classes, y[ii])
		}
	}
	sort.Ints(t.classes)

	rng := rand.New(rand.NewSource(t.Seed))
	t.root = t.grow(X, y, idx, 0, p, rng)
	return nil
}

func (t *DecisionTree) grow(X [][]float64, y []int, idx []int, depth, p int, rng *rand.Rand) *treeNode {
	counts := t.classCounts(y, idx)
	node := &treeNode{N: len(idx)}

	stop := pureCounts(counts) ||
		len(idx) < t.MinSamplesSplit ||
		(t.MaxDepth > 0 && depth >= t.MaxDepth)
	if stop {
		return t.toLeaf(node, counts)
	}

	feats := t.sampleFeatures(p, rng)
	parent := t.impurity(counts)

	// one goroutine per candidate feature, best split wins
	results := make(chan treeSplit, len(feats))
	var wg sync.WaitGroup
	for _, f := range feats {
		wg.Add(1)
		go func(f int) {
			defer wg.Done()
			results <- t.bestSplit(X, y, idx, f, parent)
		}(f)
	}
	wg.Wait()
	close(results)

	// ties broken by feature index then threshold so the tree is
	// reproducible regardless of goroutine arrival order
	best := treeSplit{feature: -1}
	for r := range results {
		if r.feature < 0 {
			continue
		}
		if r.gain > best.gain ||
			(r.gain == best.gain && best.feature >= 0 &&
				(r.feature < best.feature ||
					(r.feature == best.feature && r.threshold < best.threshold))) {
			best = r
		}
	}
	if best.feature < 0 || best.gain <= 0 {
		return t.toLeaf(node, counts)
	}

	node.Feature = best.feature
	node.Threshold = best.threshold
	node.Cat = best.cat
	node.Left = t.grow(X, y, best.left, depth+1, p, rng)
	node.Right = t.grow(X, y, best.right, depth+1, p, rng)
	return node
}

type treeSplit struct {
	gain        float64
	feature     int
	threshold   float64
	cat         bool
	left, right []int
}

// bestSplit scans one feature for the highest-gain split.
func (t *DecisionTree) bestSplit(X [][]float64, y []int, idx []int, f int, parent float64) treeSplit {
	best := treeSplit{feature: -1}

	var nans []int
	valid := make([]cell, 0, len(idx))
	for _, ii := range idx {
		v := X[ii][f]
		if math.IsNaN(v) {
			nans = append(nans, ii)
		} else {
			valid = append(valid, cell{v, ii})
		}
	}
	if len(valid) < 2 {
		return best
	}
	sort.Slice(valid, func(a, b int) bool { return valid[a].v < valid[b].v })

	evaluate := func(left, right []int, threshold float64, cat bool) {
		if len(left) < t.MinSamplesLeaf || len(right) < t.MinSamplesLeaf {
			return
		}
		lc := t.classCounts(y, left)
		rc := t.classCounts(y, right)
		total := float64(len(left) + len(right))
		weighted := float64(len(left))/total*t.impurity(lc) + float64(len(right))/total*t.impurity(rc)
		if gain := parent - weighted; gain > best.gain {
			best = treeSplit{gain: gain, feature: f, threshold: threshold, cat: cat,
				left: append([]int(nil), left...), right: append([]int(nil), right...)}
		}
	}

	// Categorical candidates: equality splits when the feature takes a
	// small set of integer-like values.
	if uniq := integerLevels(valid); uniq != nil {
		for _, uv := range uniq {
			var left, right []int
			for _, c := range valid {
				if c.v == uv {
					left = append(left, c.i)
				} else {
					right = append(right, c.i)
				}
			}
			evaluate(append(left, nans...), right, uv, true)
		}
	}

	// Numeric candidates: midpoints between consecutive distinct values.
	left := make([]int, 0, len(valid))
	for s := 0; s < len(valid); s++ {
		left = append(left, valid[s].i)
		if s+1 == len(valid) || valid[s].v == valid[s+1].v {
			continue
		}
		right := make([]int, 0, len(valid)-s-1)
		for _, c := range valid[s+1:] {
			right = append(right, c.i)
		}
		threshold := (valid[s].v + valid[s+1].v) / 2
		evaluate(append(append([]int(nil), left...), nans...), right, threshold, false)
	}
	return best
}

const maxCategoricalLevels = 16

// cell pairs a feature value with its row index during split search.
type cell struct {
	v float64
	i int
}

// integerLevels returns the sorted distinct values when the feature looks
// categorical: few levels, all integer-valued.
func integerLevels(cells []cell) []float64 {
	seen := map[float64]struct{}{}
	var uniq []float64
	for _, c := range cells {
		if c.v != math.Trunc(c.v) {
			return nil
		}
		if _, ok := seen[c.v]; !ok {
			seen[c.v] = struct{}{}
			uniq = append(uniq, c.v)
			if len(uniq) > maxCategoricalLevels {
				return nil
			}
		}
	}
	if len(uniq) < 2 {
		return nil
	}
	sort.Float64s(uniq)
	return uniq
}

func (t *DecisionTree) sampleFeatures(p int, rng *rand.Rand) []int {
	feats := rng.Perm(p)
	if t.MaxFeatures > 0 && t.MaxFeatures < p {
		feats = feats[:t.MaxFeatures]
	}
	return feats
}

func (t *DecisionTree) classCounts(y []int, idx []int) []int {
	counts := make([]int, len(t.classes))
	for _, ii := range idx {
		counts[t.classIndex(y[ii])]++
	}
	return counts
}

func (t *DecisionTree) classIndex(label int) int {
	for i, c := range t.classes {
		if c == label {
			return i
		}
	}
	return 0
}

func (t *DecisionTree) impurity(counts []int) float64 {
	if t.Criterion == "entropy" {
		return entropy(counts)
	}
	return gini(counts)
}

func (t *DecisionTree) toLeaf(node *treeNode, counts []int) *treeNode {
	node.Leaf = true
	total := 0
	for _, c := range counts {
		total += c
	}
	node.Probas = make([]float64, len(counts))
	if total > 0 {
		for i, c := range counts {
			node.Probas[i] = float64(c) / float64(total)
		}
	}
	return node
}

// Predict returns the majority class per row.
func (t *DecisionTree) Predict(X [][]float64) []float64 {
	out := make([]float64, len(X))
	forRows(len(X), func(i int) {
		probas := t.rowProbas(X[i])
		best := 0
		for j := 1; j < len(probas); j++ {
			if probas[j] > probas[best] {
				best = j
			}
		}
		out[i] = float64(t.classes[best])
	})
	return out
}

// PredictProba returns p(y=1) per row for binary trees.
func (t *DecisionTree) PredictProba(X [][]float64) []float64 {
	out := make([]float64, len(X))
	forRows(len(X), func(i int) {
		probas := t.rowProbas(X[i])
		for j, cls := range t.classes {
			if cls == 1 {
				out[i] = probas[j]
			}
		}
	})
	return out
}

func (t *DecisionTree) rowProbas(x []float64) []float64 {
	if t.root == nil {
		uniform := make([]float64, len(t.classes))
		for i := range uniform {
			uniform[i] = 1 / float64(len(uniform))
		}
		return uniform
	}
	node := t.root
	for !node.Leaf {
		v := x[node.Feature]
		switch {
		case math.IsNaN(v):
			if node.Left.N >= node.Right.N {
				node = node.Left
			} else {
				node = node.Right
			}
		case node.Cat && v == node.Threshold, !node.Cat && v <= node.Threshold:
			node = node.Left
		default:
			node = node.Right
		}
	}
	return node.Probas
}

// treeState is the gob form of a fitted tree.
type treeState struct {
	MaxDepth        int
	MinSamplesSplit int
	MinSamplesLeaf  int
	Criterion       string
	MaxFeatures     int
	Seed            int64
	Classes         []int
	Root            *treeNode
}

func (t *DecisionTree) state() treeState {
	return treeState{
		MaxDepth:        t.MaxDepth,
		MinSamplesSplit: t.MinSamplesSplit,
		MinSamplesLeaf:  t.MinSamplesLeaf,
		Criterion:       t.Criterion,
		MaxFeatures:     t.MaxFeatures,
		Seed:            t.Seed,
		Classes:         t.classes,
		Root:            t.root,
	}
}

func (t *DecisionTree) restore(state treeState) {
	t.MaxDepth = state.MaxDepth
	t.MinSamplesSplit = state.MinSamplesSplit
	t.MinSamplesLeaf = state.MinSamplesLeaf
	t.Criterion = state.Criterion
	t.MaxFeatures = state.MaxFeatures
	t.Seed = state.Seed
	t.classes = state.Classes
	t.root = state.Root
}

// MarshalBinary implements encoding.BinaryMarshaler.
func (t *DecisionTree) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(t.state()); err != nil {
		return nil, fmt.Errorf("dtree: encode: %w", err)
	}
	return buf.Bytes(), nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler.
func (t *DecisionTree) UnmarshalBinary(data []byte) error {
	var state treeState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&state); err != nil {
		return fmt.Errorf("dtree: decode: %w", err)
	}
	t.restore(state)
	return nil
}

func gini(counts []int) float64 {
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		sum += p * (1 - p)
	}
	return sum
}

func entropy(counts []int) float64 {
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return 0
	}
	sum := 0.0
	for _, c := range counts {
		if c == 0 {
			continue
		}
		p := float64(c) / float64(total)
		sum -= p * math.Log2(p)
	}
	return sum
}

func pureCounts(counts []int) bool {
	nonZero := 0
	for _, c := range counts {
		if c > 0 {
			nonZero++
		}
	}
	return nonZero <= 1
}

func intLabels(y []float64) ([]int, error) {
	out := make([]int, len(y))
	for i, v := range y {
		if v != math.Trunc(v) || math.IsNaN(v) {
			return nil, fmt.Errorf("label %v at row %d is not integral", v, i)
		}
		out[i] = int(v)
	}
	return out, nil
}

func allIndices(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	return idx
}
