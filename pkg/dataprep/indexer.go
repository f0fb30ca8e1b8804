package dataprep

import (
	"fmt"
	"sort"

	"titanicml/pkg/dataset"
)

// StringIndexer maps one string column to a numeric index column named
// <column>Index. Indices are assigned by descending frequency in the
// training frame (most frequent label gets 0), ties broken lexically so a
// fixed input always yields the same encoding. Labels unseen at fit time
// map to the next free index.
type StringIndexer struct {
	Column string

	labels map[string]float64
}

// NewStringIndexer indexes the given column.
func NewStringIndexer(column string) *StringIndexer {
	return &StringIndexer{Column: column}
}

func (si *StringIndexer) Name() string { return "index " + si.Column }

// OutputColumn is the name of the produced index column.
func (si *StringIndexer) OutputColumn() string { return si.Column + "Index" }

// Fit learns the label ordering from the column's non-null values.
func (si *StringIndexer) Fit(f *dataset.Frame) error {
	c, ok := f.Column(si.Column)
	if !ok {
		return fmt.Errorf("dataprep: index target %q not in frame", si.Column)
	}
	counts := make(map[string]int)
	for i, v := range c.Raw {
		if !c.Null[i] {
			counts[v]++
		}
	}
	if len(counts) == 0 {
		return fmt.Errorf("dataprep: column %q has no non-null values", si.Column)
	}
	ordered := make([]string, 0, len(counts))
	for v := range counts {
		ordered = append(ordered, v)
	}
	sort.Slice(ordered, func(a, b int) bool {
		if counts[ordered[a]] != counts[ordered[b]] {
			return counts[ordered[a]] > counts[ordered[b]]
		}
		return ordered[a] < ordered[b]
	})
	si.labels = make(map[string]float64, len(ordered))
	for i, v := range ordered {
		si.labels[v] = float64(i)
	}
	return nil
}

// Transform appends the index column to a copy of the frame.
func (si *StringIndexer) Transform(f *dataset.Frame) (*dataset.Frame, error) {
	if si.labels == nil {
		return nil, fmt.Errorf("dataprep: indexer for %q used before fit", si.Column)
	}
	c, ok := f.Column(si.Column)
	if !ok {
		return nil, fmt.Errorf("dataprep: index target %q not in frame", si.Column)
	}
	n := f.Len()
	idx := &dataset.Column{
		Name: si.OutputColumn(),
		Type: dataset.Double,
		Raw:  make([]string, n),
		Vals: make([]float64, n),
		Null: make([]bool, n),
	}
	unseen := float64(len(si.labels))
	for i, v := range c.Raw {
		code, ok := si.labels[v]
		if !ok {
			code = unseen
		}
		idx.SetFloat(i, code)
	}
	out := f.Clone()
	if err := out.AddColumn(idx); err != nil {
		return nil, fmt.Errorf("dataprep: %w", err)
	}
	return out, nil
}
