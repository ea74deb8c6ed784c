package pipeline

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-stepflow/pkg/pipeline/model"
)

// Pipeline is an ordered sequence of steps executed one after another.
//
// Process may be invoked repeatedly, once per distinct context: the pipeline
// holds no context-scoped state of its own.
type Pipeline struct {
	name   string
	steps  []*stepEntry
	opts   []model.PipelineOption
	addErr error
}

type stepEntry struct {
	step Step
	info *model.StepInfo
}

// compositeStep is implemented by steps that own a sub-pipeline.
type compositeStep interface {
	SubStepInfo() []*model.StepInfo
}

// New creates a new pipeline.
func New(name string, opts ...model.PipelineOption) (*Pipeline, error) {
	pipe := &Pipeline{
		name: name,
		opts: opts,
	}

	for _, opt := range opts {
		err := opt.New()
		if err != nil {
			return nil, errors.Wrap(err, "unable to apply pipeline option")
		}
	}

	return pipe, nil
}

// Name returns the pipeline name.
func (p *Pipeline) Name() string {
	return p.name
}

// Len returns the number of steps.
func (p *Pipeline) Len() int {
	return len(p.steps)
}

// AddStep appends a step to the pipeline and returns the pipeline for
// chaining. The step is registered with every pipeline option at add time;
// a foreach step is registered together with the sub-steps it holds at that
// moment. Registration failures (and a nil step) surface on the next
// Process or Finish call.
func (p *Pipeline) AddStep(step Step) *Pipeline {
	if step == nil {
		p.recordErr(ErrStepMustBeSet)

		return p
	}

	info := &model.StepInfo{Type: model.NormalStepType, Name: step.Name()}

	parent := model.StartStep
	if len(p.steps) > 0 {
		parent = p.steps[len(p.steps)-1].info
	}

	if composite, ok := step.(compositeStep); ok {
		info.Type = model.ForEachStepType

		for _, opt := range p.opts {
			p.recordErr(opt.PrepareForEach(parent, info, composite.SubStepInfo()))
		}
	} else {
		for _, opt := range p.opts {
			p.recordErr(opt.PrepareStep(parent, info))
		}
	}

	p.steps = append(p.steps, &stepEntry{step: step, info: info})

	return p
}

// Process executes every step in insertion order, threading the context from
// one step to the next. The first failing step aborts the run and its error
// is returned wrapped with the step name; no later step executes. An empty
// pipeline returns the input unchanged.
func (p *Pipeline) Process(ctx context.Context, data *Context) (*Context, error) {
	if p.addErr != nil {
		return nil, p.addErr
	}

	for _, entry := range p.steps {
		start := time.Now()

		out, err := entry.step.Process(ctx, data)
		if err != nil {
			return nil, errors.Wrapf(err, "step %s", entry.info.Name)
		}

		elapsed := time.Since(start)
		for _, opt := range p.opts {
			err = opt.OnStepOutput(entry.info, elapsed)
			if err != nil {
				return nil, errors.Wrapf(err, "unable to record output of step %s", entry.info.Name)
			}
		}

		data = out
	}

	return data, nil
}

// Finish runs the Finish hook of every pipeline option. Call it once after
// the last Process call, e.g. to render the drawer's graph.
func (p *Pipeline) Finish() error {
	if p.addErr != nil {
		return p.addErr
	}

	for _, opt := range p.opts {
		err := opt.Finish()
		if err != nil {
			return errors.Wrap(err, "unable to finish pipeline option")
		}
	}

	return nil
}

func (p *Pipeline) recordErr(err error) {
	if err != nil && p.addErr == nil {
		p.addErr = errors.Wrapf(err, "pipeline %s", p.name)
	}
}

func (p *Pipeline) stepInfos() []*model.StepInfo {
	infos := make([]*model.StepInfo, len(p.steps))
	for i, entry := range p.steps {
		infos[i] = entry.info
	}

	return infos
}
