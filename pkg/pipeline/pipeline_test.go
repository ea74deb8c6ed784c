package pipeline_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-stepflow/pkg/pipeline"
)

// appendStep records its name under the "trace" key.
func appendStep(name string) pipeline.Step {
	return pipeline.NewStep(name, func(ctx context.Context, data *pipeline.Context) (*pipeline.Context, error) {
		trace, _ := data.Get("trace").([]string)
		data.Set("trace", append(trace, name))

		return data, nil
	})
}

func TestPipelineEmptyIsIdentity(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New("empty")
	require.NoError(t, err)

	data := pipeline.NewContext()
	data.Set("x", 1)

	out, err := pipe.Process(context.Background(), data)
	require.NoError(t, err)
	assert.Same(t, data, out)
}

func TestPipelineRunsStepsInOrder(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New("ordered")
	require.NoError(t, err)

	pipe.AddStep(appendStep("first")).
		AddStep(appendStep("second")).
		AddStep(appendStep("third"))

	out, err := pipe.Process(context.Background(), pipeline.NewContext())
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, out.Get("trace"))
}

func TestPipelineThreadsReturnedContext(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New("replace")
	require.NoError(t, err)

	// the first step returns a brand new context; the second must see it
	pipe.AddStep(pipeline.NewStep("fresh", func(ctx context.Context, data *pipeline.Context) (*pipeline.Context, error) {
		out := pipeline.NewContext()
		out.Set("fresh", true)

		return out, nil
	}))
	pipe.AddStep(pipeline.NewStep("check", func(ctx context.Context, data *pipeline.Context) (*pipeline.Context, error) {
		require.True(t, data.Has("fresh"))

		return data, nil
	}))

	data := pipeline.NewContext()
	data.Set("old", 1)

	out, err := pipe.Process(context.Background(), data)
	require.NoError(t, err)
	assert.False(t, out.Has("old"))
	assert.Equal(t, true, out.Get("fresh"))
}

func TestPipelineFailFast(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New("failing")
	require.NoError(t, err)

	ran := []string{}
	record := func(name string) pipeline.Step {
		return pipeline.NewStep(name, func(ctx context.Context, data *pipeline.Context) (*pipeline.Context, error) {
			ran = append(ran, name)

			return data, nil
		})
	}

	pipe.AddStep(record("first")).
		AddStep(pipeline.NewStep("boom", func(ctx context.Context, data *pipeline.Context) (*pipeline.Context, error) {
			return nil, assert.AnError
		})).
		AddStep(record("never"))

	out, err := pipe.Process(context.Background(), pipeline.NewContext())
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Contains(t, err.Error(), "boom")
	assert.Nil(t, out)
	assert.Equal(t, []string{"first"}, ran)
}

func TestPipelineNilStep(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New("nil step")
	require.NoError(t, err)

	pipe.AddStep(nil)

	_, err = pipe.Process(context.Background(), pipeline.NewContext())
	require.Error(t, err)
	assert.ErrorIs(t, err, pipeline.ErrStepMustBeSet)

	err = pipe.Finish()
	assert.ErrorIs(t, err, pipeline.ErrStepMustBeSet)
}

func TestPipelineIdempotentAcrossRuns(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New("idempotent")
	require.NoError(t, err)

	pipe.AddStep(pipeline.NewStep("double", func(ctx context.Context, data *pipeline.Context) (*pipeline.Context, error) {
		n, ok := data.Get("n").(int)
		if !ok {
			return nil, errors.New("missing required key n")
		}
		data.Set("doubled", n*2)

		return data, nil
	}))

	first, err := pipe.Process(context.Background(), pipeline.ContextFrom(map[string]any{"n": 21}))
	require.NoError(t, err)
	second, err := pipe.Process(context.Background(), pipeline.ContextFrom(map[string]any{"n": 21}))
	require.NoError(t, err)

	assert.Equal(t, first.ToMap(), second.ToMap())
	assert.Equal(t, 42, first.Get("doubled"))
}

func TestPipelineFluentChaining(t *testing.T) {
	t.Parallel()

	pipe, err := pipeline.New("fluent")
	require.NoError(t, err)

	same := pipe.AddStep(appendStep("one"))
	assert.Same(t, pipe, same)
	assert.Equal(t, 1, pipe.Len())
}

func TestNewStepDefaultName(t *testing.T) {
	t.Parallel()

	step := pipeline.NewStep("", func(ctx context.Context, data *pipeline.Context) (*pipeline.Context, error) {
		return data, nil
	})
	assert.Equal(t, "step", step.Name())
}
