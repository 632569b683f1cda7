package ports

import (
	"image"
)

// DebugSink receives diagnostic artifacts of a render run.
type DebugSink interface {
	// Enabled returns true if debug output is enabled.
	Enabled() bool

	// SaveRunJSON saves the run summary as JSON.
	SaveRunJSON(data []byte) error

	// AppendPageEvent appends one JSON-encoded page event line.
	AppendPageEvent(line []byte) error

	// SaveContactSheet saves a thumbnail grid of captured frames.
	SaveContactSheet(img image.Image) error
}
