package video

import (
	"github.com/rs/zerolog"

	"github.com/askiada/go-stepflow/internal/ffmpeg"
)

// StepOption configures a video step at construction.
type StepOption func(*stepConfig)

type stepConfig struct {
	name   string
	runner ffmpeg.Runner
	log    zerolog.Logger
}

// WithName overrides the step's default name.
func WithName(name string) StepOption {
	return func(c *stepConfig) {
		if name != "" {
			c.name = name
		}
	}
}

// WithRunner overrides the ffmpeg runner, mainly for tests.
func WithRunner(runner ffmpeg.Runner) StepOption {
	return func(c *stepConfig) {
		c.runner = runner
	}
}

// WithLogger attaches a logger.
func WithLogger(log zerolog.Logger) StepOption {
	return func(c *stepConfig) {
		c.log = log
	}
}

func newStepConfig(defaultName string, opts ...StepOption) stepConfig {
	cfg := stepConfig{
		name:   defaultName,
		runner: ffmpeg.ExecRunner{},
		log:    zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}
