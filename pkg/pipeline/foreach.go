package pipeline

import (
	"context"
	"reflect"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/askiada/go-stepflow/pkg/pipeline/measure"
	"github.com/askiada/go-stepflow/pkg/pipeline/model"
)

// Reserved keys injected into every per-iteration context. They only exist
// in the per-iteration copies and never appear in the top-level output. A
// caller key with the same name is overwritten in the copy.
const (
	CurrentItemKey    = "_current_item"
	IterationIndexKey = "_iteration_index"
)

// DefaultResultsKey is where a foreach step stores its collected results
// unless configured otherwise.
const DefaultResultsKey = "foreach_results"

const defaultForEachName = "ForEach"

// ForEachStep replays an owned sub-pipeline once per item of an iteration
// domain and collects the per-iteration outputs.
//
// The iteration domain is the slice stored under the configured items key
// when that key is present in the run-time context, and the index range
// [0, iterations) otherwise. Each iteration runs the sub-pipeline on a
// shallow copy of the top-level context with CurrentItemKey and
// IterationIndexKey injected. After the loop the ordered results are written
// to the top-level context under the results key; no other top-level key is
// touched.
type ForEachStep struct {
	name          string
	itemsKey      string
	iterations    int
	hasIterations bool
	resultsKey    string
	sub           *Pipeline
	log           zerolog.Logger
	progress      progressReporter
	metric        measure.Metric
}

// ForEachOption configures a foreach step at construction.
type ForEachOption func(*ForEachStep)

// WithItemsKey names the context key holding the slice of items to iterate
// over.
func WithItemsKey(key string) ForEachOption {
	return func(fe *ForEachStep) {
		fe.itemsKey = key
	}
}

// WithIterations sets the number of synthetic iterations used when no items
// key resolves. The items are the indexes 0..n-1.
func WithIterations(n int) ForEachOption {
	return func(fe *ForEachStep) {
		fe.iterations = n
		fe.hasIterations = true
	}
}

// WithResultsKey overrides DefaultResultsKey.
func WithResultsKey(key string) ForEachOption {
	return func(fe *ForEachStep) {
		fe.resultsKey = key
	}
}

// WithForEachLogger attaches a logger for per-iteration debug traces.
func WithForEachLogger(log zerolog.Logger) ForEachOption {
	return func(fe *ForEachStep) {
		fe.log = log
	}
}

// WithProgress renders a terminal progress bar, one tick per iteration.
func WithProgress() ForEachOption {
	return func(fe *ForEachStep) {
		fe.progress = barProgress{}
	}
}

// WithIterationMetric records each iteration's duration into metric.
func WithIterationMetric(metric measure.Metric) ForEachOption {
	return func(fe *ForEachStep) {
		fe.metric = metric
	}
}

// NewForEach creates a foreach step. At least one of WithItemsKey and
// WithIterations must be given, otherwise ErrForEachDomain is returned
// before any run. An empty name falls back to "ForEach".
func NewForEach(name string, opts ...ForEachOption) (*ForEachStep, error) {
	if name == "" {
		name = defaultForEachName
	}

	fe := &ForEachStep{
		name:       name,
		resultsKey: DefaultResultsKey,
		log:        zerolog.Nop(),
		progress:   nopProgress{},
	}

	for _, opt := range opts {
		opt(fe)
	}

	if fe.itemsKey == "" && !fe.hasIterations {
		return nil, errors.Wrapf(ErrForEachDomain, "foreach %s", name)
	}

	sub, err := New(name + "_SubPipeline")
	if err != nil {
		return nil, errors.Wrap(err, "unable to create sub-pipeline")
	}
	fe.sub = sub

	return fe, nil
}

// Name returns the step name.
func (fe *ForEachStep) Name() string {
	return fe.name
}

// AddSubStep appends a step to the owned sub-pipeline and returns the
// foreach step for chaining.
func (fe *ForEachStep) AddSubStep(step Step) *ForEachStep {
	fe.sub.AddStep(step)

	return fe
}

// SubStepInfo exposes the sub-pipeline layout for pipeline options.
func (fe *ForEachStep) SubStepInfo() []*model.StepInfo {
	return fe.sub.stepInfos()
}

// items resolves the iteration domain from the run-time context. A
// configured items key wins when present; otherwise the domain is the index
// range of the iteration count, empty when that is unset or zero.
func (fe *ForEachStep) items(data *Context) ([]any, error) {
	if fe.itemsKey != "" {
		if v, ok := data.Lookup(fe.itemsKey); ok {
			return sliceItems(fe.itemsKey, v)
		}
	}

	count := 0
	if fe.hasIterations && fe.iterations > 0 {
		count = fe.iterations
	}

	items := make([]any, count)
	for i := range items {
		items[i] = i
	}

	return items, nil
}

func sliceItems(key string, value any) ([]any, error) {
	if items, ok := value.([]any); ok {
		return items, nil
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}

		return items, nil
	default:
		return nil, errors.Wrapf(ErrItemsNotIterable, "key %s holds %T", key, value)
	}
}

// Process runs the sub-pipeline once per item, in domain order. Iterations
// with an empty sub-pipeline contribute nothing to the results. The first
// failing iteration aborts the step and the results of earlier iterations
// are discarded: the results key is only written after the full loop.
func (fe *ForEachStep) Process(ctx context.Context, data *Context) (*Context, error) {
	items, err := fe.items(data)
	if err != nil {
		return nil, err
	}

	run := fe.progress.start(fe.name, len(items))
	results := make([]*Context, 0, len(items))

	for i, item := range items {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "foreach %s interrupted at iteration %d", fe.name, i)
		}

		iteration := data.Clone()
		iteration.Set(CurrentItemKey, item)
		iteration.Set(IterationIndexKey, i)

		start := time.Now()

		if fe.sub.Len() > 0 {
			out, err := fe.sub.Process(ctx, iteration)
			if err != nil {
				return nil, errors.Wrapf(err, "iteration %d", i)
			}

			results = append(results, out)
		}

		if fe.metric != nil {
			fe.metric.AddDuration(time.Since(start))
		}

		fe.log.Debug().
			Str("step", fe.name).
			Int("iteration", i).
			Msg("iteration done")
		run.advance()
	}

	run.finish()

	data.Set(fe.resultsKey, results)

	return data, nil
}

var (
	_ Step          = (*ForEachStep)(nil)
	_ compositeStep = (*ForEachStep)(nil)
)
