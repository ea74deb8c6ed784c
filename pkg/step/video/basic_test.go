package video_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-stepflow/internal/ffmpeg"
	"github.com/askiada/go-stepflow/pkg/pipeline"
	"github.com/askiada/go-stepflow/pkg/step/video"
)

func TestOpenVideoCaptureStoresMetadata(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{respond: func(cmd ffmpeg.Command) (*ffmpeg.Result, error) {
		require.True(t, isProbe(cmd))
		assert.Contains(t, cmd.Args, "movie.mp4")

		return probeResult("30/1", 90), nil
	}}

	step := video.NewOpenVideoCapture("movie.mp4", video.WithRunner(runner))
	assert.Equal(t, "OpenVideoCapture", step.Name())

	data := pipeline.NewContext()
	out, err := step.Process(context.Background(), data)
	require.NoError(t, err)
	assert.Same(t, data, out)

	info, ok := out.Get(video.KeyVideoCapture).(*video.CaptureInfo)
	require.True(t, ok)
	require.NotNil(t, info.Capture)
	assert.True(t, info.Capture.Opened())

	assert.Equal(t, 90, info.Metadata["frame_count"])
	assert.InDelta(t, 30.0, info.Metadata["fps"], 0.001)
	assert.Equal(t, 1280, info.Metadata["width"])
	assert.Equal(t, 720, info.Metadata["height"])
	assert.Equal(t, "h264", info.Metadata["codec"])
	assert.Equal(t, true, info.Metadata["is_file"])
	assert.Equal(t, "movie.mp4", info.Metadata["source"])
}

func TestOpenVideoCaptureStreamSourceIsNotAFile(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{respond: func(cmd ffmpeg.Command) (*ffmpeg.Result, error) {
		return probeResult("25/1", 0), nil
	}}

	step := video.NewOpenVideoCapture("rtsp://camera/stream", video.WithRunner(runner))

	out, err := step.Process(context.Background(), pipeline.NewContext())
	require.NoError(t, err)

	info, ok := out.Get(video.KeyVideoCapture).(*video.CaptureInfo)
	require.True(t, ok)
	assert.Equal(t, false, info.Metadata["is_file"])
}

func TestOpenVideoCaptureProbeFailure(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{respond: func(cmd ffmpeg.Command) (*ffmpeg.Result, error) {
		return &ffmpeg.Result{Stdout: []byte(`{"streams": []}`)}, nil
	}}

	step := video.NewOpenVideoCapture("audio.mp3", video.WithRunner(runner))

	_, err := step.Process(context.Background(), pipeline.NewContext())
	require.Error(t, err)
	assert.ErrorIs(t, err, ffmpeg.ErrNoVideoStream)
}

func TestReadVideoFrameSequential(t *testing.T) {
	t.Parallel()

	frameBytes := []byte("png-data")
	runner := &scriptedRunner{respond: func(cmd ffmpeg.Command) (*ffmpeg.Result, error) {
		if isProbe(cmd) {
			return probeResult("25/1", 100), nil
		}

		return &ffmpeg.Result{Stdout: frameBytes}, nil
	}}

	data := pipeline.NewContext()
	_, err := video.NewOpenVideoCapture("movie.mp4", video.WithRunner(runner)).
		Process(context.Background(), data)
	require.NoError(t, err)

	step := video.NewReadVideoFrame(video.WithRunner(runner))

	out, err := step.Process(context.Background(), data)
	require.NoError(t, err)

	// the frame goes into a fresh context, the capture stays behind
	assert.Equal(t, []string{video.KeyFrame, video.KeyFrameNum, video.KeyTimestampMS}, out.Keys())
	assert.Equal(t, frameBytes, out.Get(video.KeyFrame))
	assert.Equal(t, 0, out.Get(video.KeyFrameNum))
	assert.InDelta(t, 0.0, out.Get(video.KeyTimestampMS), 0.001)

	out, err = step.Process(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Get(video.KeyFrameNum))
	assert.InDelta(t, 40.0, out.Get(video.KeyTimestampMS), 0.001)

	extract := runner.calls[len(runner.calls)-1]
	assert.Equal(t, "ffmpeg", extract.Binary)
	assert.True(t, hasArgPair(extract.Args, "-vf", `select=eq(n\,1)`))
	assert.True(t, hasArgPair(extract.Args, "-i", "movie.mp4"))
}

func TestReadVideoFrameSeeksWhenFrameNumSet(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{respond: func(cmd ffmpeg.Command) (*ffmpeg.Result, error) {
		if isProbe(cmd) {
			return probeResult("25/1", 100), nil
		}

		return &ffmpeg.Result{Stdout: []byte("png-data")}, nil
	}}

	data := pipeline.NewContext()
	_, err := video.NewOpenVideoCapture("movie.mp4", video.WithRunner(runner)).
		Process(context.Background(), data)
	require.NoError(t, err)

	data.Set(video.KeyFrameNum, 7)

	out, err := video.NewReadVideoFrame(video.WithRunner(runner)).
		Process(context.Background(), data)
	require.NoError(t, err)

	assert.Equal(t, 7, out.Get(video.KeyFrameNum))
	assert.InDelta(t, 280.0, out.Get(video.KeyTimestampMS), 0.001)

	extract := runner.calls[len(runner.calls)-1]
	assert.True(t, hasArgPair(extract.Args, "-vf", `select=eq(n\,7)`))
}

func TestReadVideoFrameWithoutCapture(t *testing.T) {
	t.Parallel()

	step := video.NewReadVideoFrame()

	_, err := step.Process(context.Background(), pipeline.NewContext())
	assert.ErrorIs(t, err, video.ErrCaptureNotOpened)
}

func TestReadVideoFramePastEndOfStream(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{respond: func(cmd ffmpeg.Command) (*ffmpeg.Result, error) {
		if isProbe(cmd) {
			return probeResult("25/1", 1), nil
		}

		return &ffmpeg.Result{}, nil
	}}

	data := pipeline.NewContext()
	_, err := video.NewOpenVideoCapture("movie.mp4", video.WithRunner(runner)).
		Process(context.Background(), data)
	require.NoError(t, err)

	_, err = video.NewReadVideoFrame(video.WithRunner(runner)).
		Process(context.Background(), data)
	require.Error(t, err)
	assert.ErrorIs(t, err, video.ErrFrameRead)
}

func TestReleaseVideoFrame(t *testing.T) {
	t.Parallel()

	step := video.NewReleaseVideoFrame()

	data := pipeline.NewContext()
	data.Set(video.KeyFrame, []byte("png-data"))

	out, err := step.Process(context.Background(), data)
	require.NoError(t, err)
	assert.False(t, out.Has(video.KeyFrame))

	// releasing again only warns
	out, err = step.Process(context.Background(), out)
	require.NoError(t, err)
	assert.False(t, out.Has(video.KeyFrame))
}

func TestReadFrameFromFile(t *testing.T) {
	t.Parallel()

	framePath := filepath.Join(t.TempDir(), "frame.png")
	require.NoError(t, os.WriteFile(framePath, []byte("png-data"), 0o600))

	data := pipeline.NewContext()
	data.Set(video.KeyFramePath, framePath)

	out, err := video.NewReadFrameFromFile().Process(context.Background(), data)
	require.NoError(t, err)
	assert.Equal(t, []byte("png-data"), out.Get(video.KeyFrame))
}

func TestReadFrameFromFileMissingKey(t *testing.T) {
	t.Parallel()

	_, err := video.NewReadFrameFromFile().Process(context.Background(), pipeline.NewContext())
	assert.ErrorIs(t, err, video.ErrNoFramePath)
}

func TestReadFrameFromFileWrongType(t *testing.T) {
	t.Parallel()

	data := pipeline.NewContext()
	data.Set(video.KeyFramePath, 42)

	_, err := video.NewReadFrameFromFile().Process(context.Background(), data)
	assert.ErrorIs(t, err, video.ErrFramePathType)
}

func TestReadFrameFromFileMissingFile(t *testing.T) {
	t.Parallel()

	data := pipeline.NewContext()
	data.Set(video.KeyFramePath, filepath.Join(t.TempDir(), "missing.png"))

	_, err := video.NewReadFrameFromFile().Process(context.Background(), data)
	assert.Error(t, err)
}

func TestReleaseVideoCapture(t *testing.T) {
	t.Parallel()

	runner := &scriptedRunner{respond: func(cmd ffmpeg.Command) (*ffmpeg.Result, error) {
		return probeResult("25/1", 100), nil
	}}

	data := pipeline.NewContext()
	_, err := video.NewOpenVideoCapture("movie.mp4", video.WithRunner(runner)).
		Process(context.Background(), data)
	require.NoError(t, err)

	info, ok := data.Get(video.KeyVideoCapture).(*video.CaptureInfo)
	require.True(t, ok)

	step := video.NewReleaseVideoCapture()

	out, err := step.Process(context.Background(), data)
	require.NoError(t, err)
	assert.False(t, out.Has(video.KeyVideoCapture))
	assert.False(t, info.Capture.Opened())

	// releasing again only warns
	_, err = step.Process(context.Background(), out)
	require.NoError(t, err)
}

func TestVideoStepNameOverride(t *testing.T) {
	t.Parallel()

	step := video.NewReadVideoFrame(video.WithName("grab frame"))
	assert.Equal(t, "grab frame", step.Name())
}
