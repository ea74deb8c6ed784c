package video

import "github.com/pkg/errors"

var (
	// ErrCaptureNotOpened is reported when a step needs an open video
	// capture and none is available.
	ErrCaptureNotOpened = errors.New("video capture is not initialized or opened")
	// ErrFrameRead is reported when a frame cannot be read from the
	// capture.
	ErrFrameRead = errors.New("failed to read frame from video capture")
	// ErrNoFramePath is reported when the frame path key is missing.
	ErrNoFramePath = errors.New("no frame path provided")
	// ErrFramePathType is reported when the frame path is not a string.
	ErrFramePathType = errors.New("frame path must be a string")
	// ErrInvalidVideoPath is reported when the video path key is missing
	// or does not point to a file.
	ErrInvalidVideoPath = errors.New("invalid video path")
)
