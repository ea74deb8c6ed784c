package video

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/askiada/go-stepflow/internal/ffmpeg"
	"github.com/askiada/go-stepflow/pkg/pipeline"
)

var videoFileSuffixes = []string{".mp4", ".avi", ".mov", ".mkv"}

func isVideoFile(source string) bool {
	lower := strings.ToLower(source)
	for _, suffix := range videoFileSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}

	return false
}

// OpenVideoCaptureStep opens a video source and stores a capture handle
// plus its metadata under KeyVideoCapture.
type OpenVideoCaptureStep struct {
	cfg    stepConfig
	source string
}

// NewOpenVideoCapture creates the step for the given source path.
func NewOpenVideoCapture(source string, opts ...StepOption) *OpenVideoCaptureStep {
	return &OpenVideoCaptureStep{
		cfg:    newStepConfig("OpenVideoCapture", opts...),
		source: source,
	}
}

func (s *OpenVideoCaptureStep) Name() string {
	return s.cfg.name
}

func (s *OpenVideoCaptureStep) Process(ctx context.Context, data *pipeline.Context) (*pipeline.Context, error) {
	meta, err := ffmpeg.Probe(ctx, s.cfg.runner, s.source)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open video source %s", s.source)
	}

	capture := &Capture{source: s.source, meta: meta}

	metadata := map[string]any{
		"frame_count": meta.FrameCount,
		"fps":         meta.FPS,
		"width":       meta.Width,
		"height":      meta.Height,
		"codec":       meta.Codec,
		"is_file":     isVideoFile(s.source),
		"source":      s.source,
	}

	data.Set(KeyVideoCapture, &CaptureInfo{Capture: capture, Metadata: metadata})

	return data, nil
}

// ReadVideoFrameStep reads one frame from the open capture. The frame is
// extracted as PNG bytes. When the context holds KeyFrameNum and the source
// is a file, the capture seeks to that frame first; otherwise the current
// position is read. The step returns a fresh context holding only the
// frame, its number and its timestamp.
type ReadVideoFrameStep struct {
	cfg stepConfig
}

func NewReadVideoFrame(opts ...StepOption) *ReadVideoFrameStep {
	return &ReadVideoFrameStep{cfg: newStepConfig("ReadVideoFrame", opts...)}
}

func (s *ReadVideoFrameStep) Name() string {
	return s.cfg.name
}

func (s *ReadVideoFrameStep) Process(ctx context.Context, data *pipeline.Context) (*pipeline.Context, error) {
	capture, metadata := captureFrom(data)
	if !capture.Opened() {
		return nil, ErrCaptureNotOpened
	}

	frameNum := capture.Position()
	if v, ok := data.Lookup(KeyFrameNum); ok && isFileSource(metadata) {
		if n, ok := asInt(v); ok {
			frameNum = n
			capture.Seek(frameNum)
		}
	}

	result, err := s.cfg.runner.Run(ctx, ffmpeg.Command{
		Binary: "ffmpeg",
		Args: []string{
			"-hide_banner", "-loglevel", "error",
			"-i", capture.Source(),
			"-vf", fmt.Sprintf(`select=eq(n\,%d)`, frameNum),
			"-frames:v", "1",
			"-c:v", "png",
			"-f", "image2",
			"pipe:1",
		},
	})
	if err != nil {
		return nil, errors.Wrapf(ErrFrameRead, "frame %d: %v", frameNum, err)
	}
	if len(result.Stdout) == 0 {
		return nil, errors.Wrapf(ErrFrameRead, "frame %d is past the end of the stream", frameNum)
	}

	capture.Seek(frameNum + 1)

	timestampMS := 0.0
	if fps := capture.Metadata().FPS; fps > 0 {
		timestampMS = float64(frameNum) / fps * 1000
	}

	out := pipeline.NewContext()
	out.Set(KeyFrame, result.Stdout)
	out.Set(KeyFrameNum, frameNum)
	out.Set(KeyTimestampMS, timestampMS)

	return out, nil
}

// ReleaseVideoFrameStep removes the current frame from the context.
type ReleaseVideoFrameStep struct {
	cfg stepConfig
}

func NewReleaseVideoFrame(opts ...StepOption) *ReleaseVideoFrameStep {
	return &ReleaseVideoFrameStep{cfg: newStepConfig("ReleaseVideoFrame", opts...)}
}

func (s *ReleaseVideoFrameStep) Name() string {
	return s.cfg.name
}

func (s *ReleaseVideoFrameStep) Process(ctx context.Context, data *pipeline.Context) (*pipeline.Context, error) {
	if data.Has(KeyFrame) {
		data.Delete(KeyFrame)
	} else {
		s.cfg.log.Warn().Msg("no frame to release")
	}

	return data, nil
}

// ReadFrameFromFileStep reads an image file named by KeyFramePath into
// KeyFrame.
type ReadFrameFromFileStep struct {
	cfg stepConfig
}

func NewReadFrameFromFile(opts ...StepOption) *ReadFrameFromFileStep {
	return &ReadFrameFromFileStep{cfg: newStepConfig("ReadFrameFromFile", opts...)}
}

func (s *ReadFrameFromFileStep) Name() string {
	return s.cfg.name
}

func (s *ReadFrameFromFileStep) Process(ctx context.Context, data *pipeline.Context) (*pipeline.Context, error) {
	v, ok := data.Lookup(KeyFramePath)
	if !ok {
		return nil, ErrNoFramePath
	}

	framePath, ok := v.(string)
	if !ok {
		return nil, errors.Wrapf(ErrFramePathType, "got %T", v)
	}

	frame, err := os.ReadFile(framePath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read frame from path %s", framePath)
	}

	data.Set(KeyFrame, frame)

	return data, nil
}

// ReleaseVideoCaptureStep releases the capture and removes it from the
// context.
type ReleaseVideoCaptureStep struct {
	cfg stepConfig
}

func NewReleaseVideoCapture(opts ...StepOption) *ReleaseVideoCaptureStep {
	return &ReleaseVideoCaptureStep{cfg: newStepConfig("ReleaseVideoCapture", opts...)}
}

func (s *ReleaseVideoCaptureStep) Name() string {
	return s.cfg.name
}

func (s *ReleaseVideoCaptureStep) Process(ctx context.Context, data *pipeline.Context) (*pipeline.Context, error) {
	capture, _ := captureFrom(data)
	if capture.Opened() {
		capture.Release()
		data.Delete(KeyVideoCapture)
	} else {
		s.cfg.log.Warn().Msg("no video capture to release")
	}

	return data, nil
}

// captureFrom accepts either a *CaptureInfo or a bare *Capture under
// KeyVideoCapture.
func captureFrom(data *pipeline.Context) (*Capture, map[string]any) {
	switch v := data.Get(KeyVideoCapture).(type) {
	case *CaptureInfo:
		return v.Capture, v.Metadata
	case *Capture:
		return v, nil
	default:
		return nil, nil
	}
}

func isFileSource(metadata map[string]any) bool {
	isFile, ok := metadata["is_file"].(bool)

	return ok && isFile
}

func asInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case float64:
		return int(n), true
	default:
		return 0, false
	}
}

var (
	_ pipeline.Step = (*OpenVideoCaptureStep)(nil)
	_ pipeline.Step = (*ReadVideoFrameStep)(nil)
	_ pipeline.Step = (*ReleaseVideoFrameStep)(nil)
	_ pipeline.Step = (*ReadFrameFromFileStep)(nil)
	_ pipeline.Step = (*ReleaseVideoCaptureStep)(nil)
)
