package drawer

import (
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-stepflow/pkg/pipeline/measure"
	"github.com/askiada/go-stepflow/pkg/pipeline/model"
)

type pipelineDrawer struct {
	Drawer
	m         measure.Measure
	startTime time.Time
}

func (pd *pipelineDrawer) New() error {
	err := pd.AddStep(model.StartStep.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add start step to drawer")
	}

	return nil
}

func (pd *pipelineDrawer) PrepareStep(parentStep, step *model.StepInfo) error {
	err := pd.AddStep(step.Name)
	if err != nil {
		return err
	}
	err = pd.AddLink(parentStep.Name, step.Name)
	if err != nil {
		return err
	}

	return nil
}

// PrepareForEach draws the foreach step followed by its sub-steps as a chain
// hanging off the foreach node.
func (pd *pipelineDrawer) PrepareForEach(parentStep, step *model.StepInfo, subSteps []*model.StepInfo) error {
	err := pd.PrepareStep(parentStep, step)
	if err != nil {
		return err
	}

	previous := step
	for _, sub := range subSteps {
		err = pd.PrepareStep(previous, sub)
		if err != nil {
			return err
		}
		previous = sub
	}

	return nil
}

func (pd *pipelineDrawer) OnStepOutput(step *model.StepInfo, elapsed time.Duration) error {
	return nil
}

func (pd *pipelineDrawer) Finish() error {
	if pd.m != nil {
		err := pd.SetTotalTime(model.StartStep.Name, pd.startTime)
		if err != nil {
			return errors.Wrap(err, "unable to set total time")
		}
		err = pd.AddMeasure(pd.m)
		if err != nil {
			return errors.Wrap(err, "unable to add measure")
		}
	}

	err := pd.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw pipeline")
	}

	return nil
}

// PipelineDrawer returns a pipeline option that renders the pipeline graph
// when the pipeline finishes. measure may be nil; when set, average step
// durations are added to the drawing.
func PipelineDrawer(drawer Drawer, measure measure.Measure) model.PipelineOption {
	return &pipelineDrawer{drawer, measure, time.Now()}
}

var _ model.PipelineOption = (*pipelineDrawer)(nil)
