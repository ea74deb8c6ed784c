package video

import "github.com/askiada/go-stepflow/internal/ffmpeg"

// Capture tracks the read position over a probed video source.
type Capture struct {
	source   string
	meta     *ffmpeg.Metadata
	pos      int
	released bool
}

// Source returns the video source path.
func (c *Capture) Source() string {
	return c.source
}

// Metadata returns the probed stream metadata.
func (c *Capture) Metadata() *ffmpeg.Metadata {
	return c.meta
}

// Position returns the zero-based index of the next frame to read.
func (c *Capture) Position() int {
	return c.pos
}

// Seek moves the read position to frame.
func (c *Capture) Seek(frame int) {
	c.pos = frame
}

// Release marks the capture as released. Further reads fail.
func (c *Capture) Release() {
	c.released = true
}

// Opened reports whether the capture is still usable.
func (c *Capture) Opened() bool {
	return c != nil && !c.released
}

// CaptureInfo is the value stored under KeyVideoCapture: the capture handle
// plus the probed metadata as plain context values.
type CaptureInfo struct {
	Capture  *Capture
	Metadata map[string]any
}
