// Package summarizer provides summary generation for render runs.
package summarizer

import (
	"time"

	"github.com/user/framecast/pkg/orchestrator"
)

// Summary contains all data collected during a render run.
type Summary struct {
	// Metadata
	GeneratedAt time.Time
	RunID       string

	// Composition information
	Composition CompositionInfo

	// Capture results
	Capture CaptureInfo

	// Render settings
	Settings Settings

	// Video output details
	Video VideoInfo

	// Err is the error that ended the run, if any.
	Err error
}

// CompositionInfo describes the rendered composition.
type CompositionInfo struct {
	ID               string
	URL              string
	Width            int
	Height           int
	FPS              float64
	DurationInFrames int
}

// CaptureInfo contains capture measurements.
type CaptureInfo struct {
	Concurrency  int
	Captured     int
	Resumed      int
	FailedFrames []int
	CaptureMs    int64
	StitchMs     int64
	TotalMs      int64
}

// Settings contains the render configuration.
type Settings struct {
	Quality       string
	Browser       string
	FrameFormat   string
	FrameQuality  int
	Codec         string
	PixelFormat   string
	CRF           int
	MaxRetries    int
	FailurePolicy string
}

// VideoInfo contains information about the output video.
type VideoInfo struct {
	OutputPath string
	Location   string
	FrameCount int
	DurationMs int
	FileSize   int64

	// Inspected values; zero when the container was not inspected.
	Width       int
	Height      int
	Codec       string
	SampleCount int
}

// NewSummary creates a new Summary with the current timestamp.
func NewSummary() *Summary {
	return &Summary{
		GeneratedAt: time.Now(),
	}
}

// Builder provides a fluent interface for building a Summary.
type Builder struct {
	summary *Summary
}

// NewBuilder creates a new Builder.
func NewBuilder() *Builder {
	return &Builder{
		summary: NewSummary(),
	}
}

// WithComposition sets composition information.
func (b *Builder) WithComposition(info CompositionInfo) *Builder {
	b.summary.Composition = info
	return b
}

// WithSettings sets render settings.
func (b *Builder) WithSettings(settings Settings) *Builder {
	b.summary.Settings = settings
	return b
}

// WithResult copies the outcome of a render run.
func (b *Builder) WithResult(result orchestrator.RunResult, runErr error) *Builder {
	s := b.summary
	s.RunID = result.RunID
	s.Err = runErr
	s.Capture = CaptureInfo{
		Concurrency:  result.Concurrency,
		Captured:     result.Captured,
		Resumed:      result.Resumed,
		FailedFrames: append([]int(nil), result.FailedFrames...),
		CaptureMs:    result.CaptureDuration.Milliseconds(),
		StitchMs:     result.StitchDuration.Milliseconds(),
		TotalMs:      result.TotalDuration.Milliseconds(),
	}
	s.Video.OutputPath = result.OutputPath
	s.Video.Location = result.Location
	s.Video.DurationMs = result.VideoDuration
	if runErr == nil {
		s.Video.FrameCount = result.TotalFrames
	}
	if v := result.Video; v != nil {
		s.Video.Width = v.Width
		s.Video.Height = v.Height
		s.Video.Codec = v.Codec
		s.Video.SampleCount = v.FrameCount
	}
	return b
}

// WithFileSize sets the size of the output file.
func (b *Builder) WithFileSize(size int64) *Builder {
	b.summary.Video.FileSize = size
	return b
}

// Build returns the constructed Summary.
func (b *Builder) Build() *Summary {
	return b.summary
}
