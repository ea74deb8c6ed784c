package ffmpeg_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-stepflow/internal/ffmpeg"
)

func TestExecRunnerCapturesStdout(t *testing.T) {
	t.Parallel()

	result, err := ffmpeg.ExecRunner{}.Run(context.Background(), ffmpeg.Command{
		Binary: "echo",
		Args:   []string{"hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, "hello\n", string(result.Stdout))
}

func TestExecRunnerMissingBinary(t *testing.T) {
	t.Parallel()

	_, err := ffmpeg.ExecRunner{}.Run(context.Background(), ffmpeg.Command{})
	assert.ErrorIs(t, err, ffmpeg.ErrBinaryRequired)
}

func TestExecRunnerUnknownBinary(t *testing.T) {
	t.Parallel()

	_, err := ffmpeg.ExecRunner{}.Run(context.Background(), ffmpeg.Command{
		Binary: "definitely-not-a-real-binary",
	})
	assert.Error(t, err)
}

func TestExecRunnerCancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ffmpeg.ExecRunner{}.Run(ctx, ffmpeg.Command{
		Binary: "sleep",
		Args:   []string{"10"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
