package measure

import (
	"time"

	"github.com/askiada/go-stepflow/pkg/pipeline/model"
)

type pipelineMeasure struct {
	m         Measure
	startTime time.Time
}

func (pm *pipelineMeasure) New() error {
	return nil
}

func (pm *pipelineMeasure) PrepareStep(parentStep, step *model.StepInfo) error {
	pm.m.AddMetric(step.Name)

	return nil
}

func (pm *pipelineMeasure) PrepareForEach(parentStep, step *model.StepInfo, subSteps []*model.StepInfo) error {
	pm.m.AddMetric(step.Name)

	return nil
}

func (pm *pipelineMeasure) OnStepOutput(step *model.StepInfo, elapsed time.Duration) error {
	mt := pm.m.GetMetric(step.Name)
	if mt == nil {
		mt = pm.m.AddMetric(step.Name)
	}
	mt.AddDuration(elapsed)

	return nil
}

func (pm *pipelineMeasure) Finish() error {
	pm.m.SetTotalDuration(time.Since(pm.startTime))

	return nil
}

// PipelineMeasure returns a pipeline option that records every step's
// duration into m.
func PipelineMeasure(m Measure) model.PipelineOption {
	return &pipelineMeasure{m: m, startTime: time.Now()}
}

var _ model.PipelineOption = (*pipelineMeasure)(nil)
