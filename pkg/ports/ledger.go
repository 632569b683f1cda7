package ports

import "context"

// RunLedger persists which frames of a run have been captured so an
// interrupted run can resume without re-rendering them.
type RunLedger interface {
	// Completed returns the frame indices recorded for the run key.
	Completed(ctx context.Context, runKey string) ([]int, error)

	// MarkCompleted records a captured frame.
	MarkCompleted(ctx context.Context, runKey string, index int) error

	// Reset forgets all frames recorded for the run key.
	Reset(ctx context.Context, runKey string) error

	// Close releases the ledger's resources.
	Close() error
}

// Publisher uploads a finished video to remote storage.
type Publisher interface {
	// Publish uploads the local file under key and returns its remote location.
	Publish(ctx context.Context, localPath, key string) (string, error)
}

// VideoInfo describes an encoded video file.
type VideoInfo struct {
	Width       int
	Height      int
	Codec       string
	FrameCount  int
	DurationSec float64
}

// VideoInspector reads metadata from an encoded video.
type VideoInspector interface {
	Inspect(path string) (VideoInfo, error)
}
