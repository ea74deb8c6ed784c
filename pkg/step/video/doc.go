// Package video provides the video processing steps of a pipeline: opening
// a video source, reading frames, releasing them, and downsampling a video
// to a target frame rate, resolution or format.
//
// All steps shell out to ffmpeg/ffprobe through the internal runner, so a
// working ffmpeg install must be on the PATH (or a custom runner injected
// with WithRunner).
package video
