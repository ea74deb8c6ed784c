package pipeline

import "context"

// Step is one named unit of work over a Context.
//
// Process consumes a context and returns the context the caller must use
// afterwards. Implementations are free to mutate and return their input, or
// to build a fresh one; callers must treat the returned value as
// authoritative either way.
type Step interface {
	Name() string
	Process(ctx context.Context, data *Context) (*Context, error)
}

// ProcessFunc is the signature of a step body.
type ProcessFunc func(ctx context.Context, data *Context) (*Context, error)

const defaultStepName = "step"

type stepFunc struct {
	name string
	fn   ProcessFunc
}

// NewStep wraps fn into a named step. An empty name falls back to "step".
func NewStep(name string, fn ProcessFunc) Step {
	if name == "" {
		name = defaultStepName
	}

	return &stepFunc{name: name, fn: fn}
}

func (s *stepFunc) Name() string {
	return s.name
}

func (s *stepFunc) Process(ctx context.Context, data *Context) (*Context, error) {
	return s.fn(ctx, data)
}

var _ Step = (*stepFunc)(nil)
