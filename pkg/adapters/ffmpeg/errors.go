package ffmpeg

import "errors"

var (
	// ErrFFmpegNotFound is returned when no ffmpeg binary can be located.
	ErrFFmpegNotFound = errors.New("ffmpeg: ffmpeg not found in PATH")

	// ErrEmptyArgs is returned when Run is called without arguments.
	ErrEmptyArgs = errors.New("ffmpeg: empty argument list")
)
