package pipeline

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"

	"github.com/user/framecast/pkg/ports"
)

// Composition identifies a renderable unit. It is immutable once resolution begins.
type Composition struct {
	ID               string
	URL              string
	Width            int
	Height           int
	FPS              float64
	DurationInFrames int
}

// FrameURL returns the composition URL with the frame encoded as query
// parameters so the page renders exactly that frame.
func (c Composition) FrameURL(index int) (string, error) {
	u, err := url.Parse(c.URL)
	if err != nil {
		return "", fmt.Errorf("parse composition url: %w", err)
	}
	q := u.Query()
	q.Set("composition", c.ID)
	q.Set("frame", strconv.Itoa(index))
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// FrameIndex is a zero-based ordinal in [0, DurationInFrames).
type FrameIndex = int

// FrameJob is one frame to capture. It is claimed by exactly one worker.
type FrameJob struct {
	Index       FrameIndex
	Composition Composition
	Attempt     int // 0 for the first try, incremented per retry
}

// CaptureSettings configures how a frame is captured and stored.
type CaptureSettings struct {
	Dir             string
	Format          ports.ImageFormat
	Quality         int    // JPEG quality (0-100)
	Selector        string // Root element selector
	ReadyExpression string // Script expression that becomes true once painted
	ReadyTimeoutMs  int
}

// DefaultCaptureSettings returns CaptureSettings with default values.
func DefaultCaptureSettings() CaptureSettings {
	return CaptureSettings{
		Dir:             "frames",
		Format:          ports.FormatPNG,
		Quality:         80,
		Selector:        "#canvas",
		ReadyExpression: "window.ready === true",
		ReadyTimeoutMs:  30000,
	}
}

// FramePath returns the deterministic path for a frame index.
func FramePath(dir string, index FrameIndex, format ports.ImageFormat) string {
	return filepath.Join(dir, fmt.Sprintf("%d.%s", index, format.Extension()))
}

// CapturedFrame is an image artifact on disk, immutable after capture.
type CapturedFrame struct {
	Index   FrameIndex
	Path    string
	Format  ports.ImageFormat
	Quality int
}

// StitchInput contains parameters for assembling frames into a video.
type StitchInput struct {
	Frames      []CapturedFrame
	Total       int // Expected number of frames
	OutputPath  string
	FPS         float64
	AudioPath   string // Optional audio track
	Codec       string
	PixelFormat string
	CRF         int
	AudioCodec  string
}

// DefaultStitchInput returns StitchInput with default encoder options.
func DefaultStitchInput() StitchInput {
	return StitchInput{
		Codec:       "libx264",
		PixelFormat: "yuv420p",
		CRF:         18,
		AudioCodec:  "aac",
	}
}

// StitchResult describes the produced video.
type StitchResult struct {
	OutputPath string
	FrameCount int
	UsedConcat bool // true when an ffconcat list was used instead of a pattern
	DurationMs int
}

// ContactSheetInput contains parameters for the contact sheet stage.
type ContactSheetInput struct {
	Frames     []CapturedFrame // Captured frames in any order
	Columns    int
	ThumbWidth int // Thumbnail width in pixels; height follows the frame aspect ratio
	MaxFrames  int // Frames sampled evenly across the run
	Workers    int
}

// DefaultContactSheetInput returns ContactSheetInput with default values.
func DefaultContactSheetInput() ContactSheetInput {
	return ContactSheetInput{
		Columns:    6,
		ThumbWidth: 160,
		MaxFrames:  24,
		Workers:    4,
	}
}
