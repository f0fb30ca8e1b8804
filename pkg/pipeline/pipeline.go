// Package pipeline chains preprocessing stages under a shared fit/transform
// contract: every stage learns its parameters from the training frame and
// then applies the same learned mapping to any frame.
package pipeline

import (
	"fmt"

	"titanicml/pkg/dataset"
)

// Stage is one preprocessing step.
type Stage interface {
	// Name identifies the stage in logs and errors.
	Name() string
	// Fit learns stage parameters from the frame.
	Fit(f *dataset.Frame) error
	// Transform applies the learned mapping, returning a new frame.
	Transform(f *dataset.Frame) (*dataset.Frame, error)
}

// Pipeline runs stages in order. Fit fits each stage on the output of the
// stages before it, mirroring how the stages run at transform time.
type Pipeline struct {
	stages []Stage
}

// New builds a pipeline from stages.
func New(stages ...Stage) *Pipeline { return &Pipeline{stages: stages} }

// Fit fits every stage in sequence and returns the fully transformed
// training frame.
func (p *Pipeline) Fit(f *dataset.Frame) (*dataset.Frame, error) {
	var err error
	for _, s := range p.stages {
		if err = s.Fit(f); err != nil {
			return nil, fmt.Errorf("pipeline: fit %s: %w", s.Name(), err)
		}
		if f, err = s.Transform(f); err != nil {
			return nil, fmt.Errorf("pipeline: transform %s: %w", s.Name(), err)
		}
	}
	return f, nil
}

// Transform applies all fitted stages in sequence.
func (p *Pipeline) Transform(f *dataset.Frame) (*dataset.Frame, error) {
	var err error
	for _, s := range p.stages {
		if f, err = s.Transform(f); err != nil {
			return nil, fmt.Errorf("pipeline: transform %s: %w", s.Name(), err)
		}
	}
	return f, nil
}
