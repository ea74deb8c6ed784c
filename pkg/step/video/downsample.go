package video

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-stepflow/internal/ffmpeg"
	"github.com/askiada/go-stepflow/pkg/pipeline"
)

// DefaultOutputFPS is the target frame rate used when none is configured.
const DefaultOutputFPS = 5

// VideoDownsamplingStep converts the video named by KeyVideoPath to a
// target frame rate, resolution and/or container format with ffmpeg. The
// output is written next to the input with a "_downsampled" suffix and
// KeyVideoPath is updated to point at it.
//
// When the input already runs at the target frame rate (within 0.01 fps)
// the conversion is skipped; the metadata keys are written either way.
// NVIDIA hardware encoding is used when ffmpeg reports cuda support.
type VideoDownsamplingStep struct {
	cfg        stepConfig
	fps        int
	resolution string
	format     string
}

// DownsampleOption configures a VideoDownsamplingStep.
type DownsampleOption func(*VideoDownsamplingStep)

// DownsampleFPS sets the target frame rate. Zero disables the frame rate
// filter.
func DownsampleFPS(fps int) DownsampleOption {
	return func(s *VideoDownsamplingStep) {
		s.fps = fps
	}
}

// DownsampleResolution sets the target resolution, e.g. "1280x720".
func DownsampleResolution(resolution string) DownsampleOption {
	return func(s *VideoDownsamplingStep) {
		s.resolution = resolution
	}
}

// DownsampleFormat sets the target container format, e.g. "mp4" or "webm".
func DownsampleFormat(format string) DownsampleOption {
	return func(s *VideoDownsamplingStep) {
		s.format = format
	}
}

// DownsampleStep applies a shared step option (name, runner, logger).
func DownsampleStep(opt StepOption) DownsampleOption {
	return func(s *VideoDownsamplingStep) {
		opt(&s.cfg)
	}
}

// NewVideoDownsampling creates the step. The default target is
// DefaultOutputFPS with no resolution or format change.
func NewVideoDownsampling(opts ...DownsampleOption) *VideoDownsamplingStep {
	s := &VideoDownsamplingStep{
		cfg: newStepConfig("VideoDownsampling"),
		fps: DefaultOutputFPS,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *VideoDownsamplingStep) Name() string {
	return s.cfg.name
}

func (s *VideoDownsamplingStep) Process(ctx context.Context, data *pipeline.Context) (*pipeline.Context, error) {
	videoPath, err := s.videoPath(data)
	if err != nil {
		return nil, err
	}

	meta, err := ffmpeg.Probe(ctx, s.cfg.runner, videoPath)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to retrieve FPS of %s", videoPath)
	}
	originalFPS := meta.FPS

	s.cfg.log.Info().
		Float64("original_fps", originalFPS).
		Int("target_fps", s.fps).
		Msg("downsampling video")

	if s.fps > 0 && math.Abs(originalFPS-float64(s.fps)) < 0.01 {
		s.cfg.log.Info().Msg("original and target FPS are the same, skipping downsampling")
		s.writeMetadata(data, originalFPS)

		return data, nil
	}

	outputPath := s.outputPath(videoPath)

	start := time.Now()
	err = s.downsample(ctx, videoPath, outputPath)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to downsample video %s", videoPath)
	}

	s.cfg.log.Info().
		Str("output", outputPath).
		Dur("elapsed", time.Since(start)).
		Msg("downsampling done")

	data.Set(KeyVideoPath, outputPath)
	s.writeMetadata(data, originalFPS)

	return data, nil
}

func (s *VideoDownsamplingStep) videoPath(data *pipeline.Context) (string, error) {
	v, ok := data.Lookup(KeyVideoPath)
	if !ok {
		return "", errors.Wrap(ErrInvalidVideoPath, "missing video_path key")
	}

	videoPath, ok := v.(string)
	if !ok {
		return "", errors.Wrapf(ErrInvalidVideoPath, "got %T", v)
	}

	info, err := os.Stat(videoPath)
	if err != nil || info.IsDir() {
		return "", errors.Wrapf(ErrInvalidVideoPath, "%s", videoPath)
	}

	return videoPath, nil
}

func (s *VideoDownsamplingStep) outputPath(videoPath string) string {
	ext := filepath.Ext(videoPath)
	stem := strings.TrimSuffix(filepath.Base(videoPath), ext)

	suffix := ext
	if s.format != "" {
		suffix = "." + s.format
	}

	return filepath.Join(filepath.Dir(videoPath), stem+"_downsampled"+suffix)
}

func (s *VideoDownsamplingStep) writeMetadata(data *pipeline.Context, originalFPS float64) {
	data.Set(KeyOutputFPS, s.fps)
	data.Set(KeyVideoFPS, originalFPS)
	data.Set(KeyOutputResolution, s.resolution)
	data.Set(KeyOutputFormat, s.format)
}

func (s *VideoDownsamplingStep) downsample(ctx context.Context, inputPath, outputPath string) error {
	useGPU := s.detectGPU(ctx)

	filters := []string{}
	if s.fps > 0 {
		filters = append(filters, fmt.Sprintf("fps=%d", s.fps))
	}
	if s.resolution != "" {
		filters = append(filters, "scale="+s.resolution)
	}

	codec := s.codec(useGPU)

	args := []string{"-hide_banner", "-loglevel", "error"}
	if useGPU {
		args = append(args, "-hwaccel", "cuda")
	}
	args = append(args, "-i", inputPath)
	if len(filters) > 0 {
		args = append(args, "-vf", strings.Join(filters, ","))
	}
	args = append(args,
		"-c:v", codec,
		"-preset", "fast",
		"-c:a", "copy",
		"-max_muxing_queue_size", "9999",
		"-y", filepath.ToSlash(outputPath),
	)

	_, err := s.cfg.runner.Run(ctx, ffmpeg.Command{Binary: "ffmpeg", Args: args})
	if err != nil {
		return errors.Wrap(err, "ffmpeg failed")
	}

	return nil
}

// detectGPU reports whether ffmpeg supports cuda hardware acceleration. A
// failing probe counts as no GPU.
func (s *VideoDownsamplingStep) detectGPU(ctx context.Context) bool {
	result, err := s.cfg.runner.Run(ctx, ffmpeg.Command{
		Binary: "ffmpeg",
		Args:   []string{"-hide_banner", "-hwaccels"},
	})
	if err != nil {
		s.cfg.log.Debug().Err(err).Msg("unable to list hardware accelerators")

		return false
	}

	useGPU := strings.Contains(strings.ToLower(string(result.Stdout)), "cuda")
	if useGPU {
		s.cfg.log.Info().Msg("NVIDIA GPU detected, using hardware acceleration")
	} else {
		s.cfg.log.Info().Msg("no NVIDIA GPU detected, using CPU encoding")
	}

	return useGPU
}

func (s *VideoDownsamplingStep) codec(useGPU bool) string {
	// NVENC has no VP9 encoder, webm always encodes on the CPU.
	if s.format == "webm" {
		return "libvpx-vp9"
	}

	if useGPU {
		return "h264_nvenc"
	}

	return "libx264"
}

var _ pipeline.Step = (*VideoDownsamplingStep)(nil)
