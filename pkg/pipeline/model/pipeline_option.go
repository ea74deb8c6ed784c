package model

import "time"

// PipelineOption defines the interface for pipeline options.
type PipelineOption interface {
	// New initialises the pipeline option.
	New() error

	// PrepareStep runs when a step is added to the pipeline.
	PrepareStep(parentStep, step *StepInfo) error
	// PrepareForEach runs when a foreach step is added to the pipeline.
	// subSteps holds the sub-pipeline layout at the time the foreach step
	// is added.
	PrepareForEach(parentStep, step *StepInfo, subSteps []*StepInfo) error
	// OnStepOutput runs after a step returns its context.
	OnStepOutput(step *StepInfo, elapsed time.Duration) error

	// Finish runs after the pipeline is finished.
	Finish() error
}
