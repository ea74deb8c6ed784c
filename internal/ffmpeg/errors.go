package ffmpeg

import "github.com/pkg/errors"

var (
	// ErrBinaryRequired is reported when a command has no binary.
	ErrBinaryRequired = errors.New("binary is required")
	// ErrNoVideoStream is reported when ffprobe finds no video stream.
	ErrNoVideoStream = errors.New("no video stream found")
	// ErrInvalidRate is reported when a frame rate cannot be parsed.
	ErrInvalidRate = errors.New("invalid frame rate")
)
