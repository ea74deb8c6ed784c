package ffmpeg

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// Runner executes commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) (*Result, error)
}

// ExecRunner runs commands with os/exec. A cancelled context kills the
// process.
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, cmd Command) (*Result, error) {
	if cmd.Binary == "" {
		return nil, ErrBinaryRequired
	}

	execCmd := exec.CommandContext(ctx, cmd.Binary, cmd.Args...)
	execCmd.Dir = cmd.Dir

	var stdout, stderr bytes.Buffer
	execCmd.Stdout = &stdout
	execCmd.Stderr = &stderr

	start := time.Now()
	err := execCmd.Run()

	exitCode := -1
	if execCmd.ProcessState != nil {
		exitCode = execCmd.ProcessState.ExitCode()
	}

	result := &Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: exitCode,
		Duration: time.Since(start),
	}

	if err != nil {
		if ctx.Err() != nil {
			return result, errors.Wrap(ctx.Err(), "command killed by context")
		}

		return result, errors.Wrapf(err, "%s exited with code %d: %s",
			cmd.Binary, result.ExitCode, strings.TrimSpace(stderr.String()))
	}

	return result, nil
}

var _ Runner = ExecRunner{}
