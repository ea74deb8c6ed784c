// Package ffmpeg runs ffmpeg and ffprobe subprocesses and parses their
// output. Steps depend on the Runner interface so tests can stand in for a
// real install.
package ffmpeg

import "time"

// Command configures one ffmpeg or ffprobe invocation.
type Command struct {
	// Binary is the executable path or name (resolved via PATH).
	Binary string
	// Args are the command-line arguments.
	Args []string
	// Dir is the working directory. If empty, uses the current directory.
	Dir string
}

// Result holds the output and status of a completed invocation.
type Result struct {
	// Stdout is the captured standard output.
	Stdout []byte
	// Stderr is the captured standard error.
	Stderr []byte
	// ExitCode is the process exit code. -1 if the process never ran.
	ExitCode int
	// Duration is how long the process ran.
	Duration time.Duration
}
