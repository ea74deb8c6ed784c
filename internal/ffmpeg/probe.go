package ffmpeg

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Metadata describes the first video stream of a file as reported by
// ffprobe.
type Metadata struct {
	FrameCount int
	FPS        float64
	Width      int
	Height     int
	Codec      string
	// Duration is the stream duration in seconds, 0 when unknown.
	Duration float64
}

type probeOutput struct {
	Streams []struct {
		CodecName  string `json:"codec_name"`
		Width      int    `json:"width"`
		Height     int    `json:"height"`
		RFrameRate string `json:"r_frame_rate"`
		NbFrames   string `json:"nb_frames"`
		Duration   string `json:"duration"`
	} `json:"streams"`
}

// Probe asks ffprobe for the metadata of the first video stream of path.
func Probe(ctx context.Context, runner Runner, path string) (*Metadata, error) {
	result, err := runner.Run(ctx, Command{
		Binary: "ffprobe",
		Args: []string{
			"-v", "error",
			"-select_streams", "v:0",
			"-show_entries", "stream=codec_name,width,height,r_frame_rate,nb_frames,duration",
			"-of", "json",
			path,
		},
	})
	if err != nil {
		return nil, errors.Wrapf(err, "unable to probe %s", path)
	}

	var out probeOutput
	err = json.Unmarshal(result.Stdout, &out)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to parse ffprobe output for %s", path)
	}

	if len(out.Streams) == 0 {
		return nil, errors.Wrapf(ErrNoVideoStream, "in %s", path)
	}

	stream := out.Streams[0]

	fps, err := ParseRate(stream.RFrameRate)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to parse frame rate of %s", path)
	}

	meta := &Metadata{
		FPS:    fps,
		Width:  stream.Width,
		Height: stream.Height,
		Codec:  stream.CodecName,
	}

	// nb_frames and duration are optional depending on the container.
	meta.FrameCount, _ = strconv.Atoi(stream.NbFrames)
	meta.Duration, _ = strconv.ParseFloat(stream.Duration, 64)

	if meta.FrameCount == 0 && meta.Duration > 0 {
		meta.FrameCount = int(meta.Duration * fps)
	}

	return meta, nil
}

// ParseRate parses an ffprobe rational rate such as "30000/1001" or "25".
func ParseRate(rate string) (float64, error) {
	if rate == "" {
		return 0, errors.Wrap(ErrInvalidRate, "empty rate")
	}

	num, denom, found := strings.Cut(rate, "/")
	if !found {
		value, err := strconv.ParseFloat(rate, 64)
		if err != nil {
			return 0, errors.Wrapf(ErrInvalidRate, "%q", rate)
		}

		return value, nil
	}

	numValue, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrInvalidRate, "%q", rate)
	}

	denomValue, err := strconv.ParseFloat(denom, 64)
	if err != nil || denomValue == 0 {
		return 0, errors.Wrapf(ErrInvalidRate, "%q", rate)
	}

	return numValue / denomValue, nil
}
