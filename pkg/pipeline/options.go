package pipeline

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/askiada/go-stepflow/pkg/pipeline/model"
)

// Logger returns a pipeline option that traces step registration and step
// durations at debug level.
func Logger(log zerolog.Logger) model.PipelineOption {
	return &loggerOption{log: log}
}

type loggerOption struct {
	log zerolog.Logger
}

func (lo *loggerOption) New() error {
	return nil
}

func (lo *loggerOption) PrepareStep(parentStep, step *model.StepInfo) error {
	lo.log.Debug().
		Str("step", step.Name).
		Str("parent", parentStep.Name).
		Msg("step added")

	return nil
}

func (lo *loggerOption) PrepareForEach(parentStep, step *model.StepInfo, subSteps []*model.StepInfo) error {
	lo.log.Debug().
		Str("step", step.Name).
		Str("parent", parentStep.Name).
		Int("sub_steps", len(subSteps)).
		Msg("foreach step added")

	return nil
}

func (lo *loggerOption) OnStepOutput(step *model.StepInfo, elapsed time.Duration) error {
	lo.log.Debug().
		Str("step", step.Name).
		Dur("elapsed", elapsed).
		Msg("step done")

	return nil
}

func (lo *loggerOption) Finish() error {
	return nil
}

var _ model.PipelineOption = (*loggerOption)(nil)
