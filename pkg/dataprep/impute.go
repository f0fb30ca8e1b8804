// Package dataprep implements the preprocessing stages: constant
// imputation, frequency-ordered string indexing, feature-vector assembly
// and standardization.
package dataprep

import (
	"fmt"

	"titanicml/pkg/dataset"
)

// Imputer fills null cells with fixed constants: one numeric constant per
// numeric column, one string constant per string column. The constants are
// configuration, not learned, so Fit only validates the targets exist.
type Imputer struct {
	Numeric     map[string]float64
	Categorical map[string]string
}

// NewImputer builds an imputer over the given fill constants. Either map
// may be nil.
func NewImputer(numeric map[string]float64, categorical map[string]string) *Imputer {
	return &Imputer{Numeric: numeric, Categorical: categorical}
}

func (im *Imputer) Name() string { return "imputer" }

// Fit checks every configured column exists with a compatible type.
func (im *Imputer) Fit(f *dataset.Frame) error {
	for name := range im.Numeric {
		c, ok := f.Column(name)
		if !ok {
			return fmt.Errorf("dataprep: impute target %q not in frame", name)
		}
		if c.Type == dataset.String {
			return fmt.Errorf("dataprep: numeric fill on string column %q", name)
		}
	}
	for name := range im.Categorical {
		if _, ok := f.Column(name); !ok {
			return fmt.Errorf("dataprep: impute target %q not in frame", name)
		}
	}
	return nil
}

// Transform fills null cells on a copy of the frame. Filling a numeric
// integer column promotes it to double, matching how the fill constant is
// written.
func (im *Imputer) Transform(f *dataset.Frame) (*dataset.Frame, error) {
	out := f.Clone()
	for name, fill := range im.Numeric {
		c, ok := out.Column(name)
		if !ok {
			return nil, fmt.Errorf("dataprep: impute target %q not in frame", name)
		}
		filled := false
		for i, isNull := range c.Null {
			if isNull {
				c.SetFloat(i, fill)
				filled = true
			}
		}
		if filled && c.Type == dataset.Integer {
			c.Type = dataset.Double
		}
	}
	for name, fill := range im.Categorical {
		c, ok := out.Column(name)
		if !ok {
			return nil, fmt.Errorf("dataprep: impute target %q not in frame", name)
		}
		for i, isNull := range c.Null {
			if isNull {
				c.SetString(i, fill)
			}
		}
	}
	return out, nil
}
