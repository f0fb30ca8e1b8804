package dataprep

import (
	"fmt"

	"titanicml/pkg/dataset"
	"titanicml/pkg/stats"
)

// Assembler concatenates numeric columns, in order, into the frame's dense
// feature matrix. It learns nothing; Fit validates the columns.
type Assembler struct {
	Columns []string
}

// NewAssembler assembles the given columns into the feature vector.
func NewAssembler(columns ...string) *Assembler {
	return &Assembler{Columns: columns}
}

func (a *Assembler) Name() string { return "assembler" }

// Fit checks every input column exists and is numeric.
func (a *Assembler) Fit(f *dataset.Frame) error {
	if len(a.Columns) == 0 {
		return fmt.Errorf("dataprep: assembler has no input columns")
	}
	for _, name := range a.Columns {
		c, ok := f.Column(name)
		if !ok {
			return fmt.Errorf("dataprep: assemble input %q not in frame", name)
		}
		if c.Type == dataset.String {
			return fmt.Errorf("dataprep: assemble input %q is a string column", name)
		}
	}
	return nil
}

// Transform builds the feature matrix on a copy of the frame.
func (a *Assembler) Transform(f *dataset.Frame) (*dataset.Frame, error) {
	cols := make([][]float64, len(a.Columns))
	for j, name := range a.Columns {
		vals, err := f.Floats(name)
		if err != nil {
			return nil, fmt.Errorf("dataprep: assemble: %w", err)
		}
		cols[j] = vals
	}
	out := f.Clone()
	out.FeatureNames = append([]string(nil), a.Columns...)
	out.Features = make([][]float64, f.Len())
	for i := range out.Features {
		row := make([]float64, len(cols))
		for j := range cols {
			row[j] = cols[j][i]
		}
		out.Features[i] = row
	}
	return out, nil
}

// Scaler standardizes the assembled feature matrix. It must run after the
// assembler in the pipeline.
type Scaler struct {
	scaler *stats.StandardScaler
}

// NewScaler returns an unfitted standardization stage.
func NewScaler() *Scaler { return &Scaler{scaler: stats.NewStandardScaler()} }

func (s *Scaler) Name() string { return "scaler" }

// Fit learns per-feature mean and deviation from the frame's feature
// matrix.
func (s *Scaler) Fit(f *dataset.Frame) error {
	if f.Features == nil {
		return fmt.Errorf("dataprep: scaler requires an assembled feature matrix")
	}
	return s.scaler.Fit(f.Features)
}

// Transform replaces the feature matrix with its standardized copy.
func (s *Scaler) Transform(f *dataset.Frame) (*dataset.Frame, error) {
	if f.Features == nil {
		return nil, fmt.Errorf("dataprep: scaler requires an assembled feature matrix")
	}
	scaled, err := s.scaler.Transform(f.Features)
	if err != nil {
		return nil, fmt.Errorf("dataprep: %w", err)
	}
	out := f.Clone()
	out.Features = scaled
	return out, nil
}
