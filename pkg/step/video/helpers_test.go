package video_test

import (
	"context"
	"fmt"

	"github.com/askiada/go-stepflow/internal/ffmpeg"
)

// scriptedRunner records every command and delegates to a test-provided
// responder.
type scriptedRunner struct {
	calls   []ffmpeg.Command
	respond func(cmd ffmpeg.Command) (*ffmpeg.Result, error)
}

func (r *scriptedRunner) Run(ctx context.Context, cmd ffmpeg.Command) (*ffmpeg.Result, error) {
	r.calls = append(r.calls, cmd)

	return r.respond(cmd)
}

func isProbe(cmd ffmpeg.Command) bool {
	return cmd.Binary == "ffprobe"
}

func isHWAccelQuery(cmd ffmpeg.Command) bool {
	return cmd.Binary == "ffmpeg" && len(cmd.Args) == 2 && cmd.Args[1] == "-hwaccels"
}

func probeResult(rate string, nbFrames int) *ffmpeg.Result {
	out := fmt.Sprintf(`{
		"streams": [
			{
				"codec_name": "h264",
				"width": 1280,
				"height": 720,
				"r_frame_rate": %q,
				"nb_frames": "%d"
			}
		]
	}`, rate, nbFrames)

	return &ffmpeg.Result{Stdout: []byte(out)}
}

func hasArgPair(args []string, flag, value string) bool {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}

	return false
}
