package video

// Context keys read and written by the video steps.
const (
	KeyVideoCapture = "video_capture"
	KeyVideoPath    = "video_path"
	KeyFrame        = "frame"
	KeyFrameNum     = "frame_num"
	KeyFramePath    = "frame_path"
	KeyTimestampMS  = "timestamp-ms"

	KeyOutputFPS        = "output_fps"
	KeyVideoFPS         = "video_fps"
	KeyOutputResolution = "output_resolution"
	KeyOutputFormat     = "output_format"
)
