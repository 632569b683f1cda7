// Package resolve implements the composition resolution stage.
package resolve

import (
	"context"
	"net/url"

	"github.com/user/framecast/pkg/pipeline"
)

// Stage enumerates the frames of a composition.
// This is a pure function with no external dependencies.
type Stage struct{}

// NewStage creates a new resolve stage.
func NewStage() *Stage {
	return &Stage{}
}

// Execute returns every frame index of the composition in ascending order.
func (s *Stage) Execute(ctx context.Context, comp pipeline.Composition) ([]pipeline.FrameIndex, error) {
	if err := Validate(comp); err != nil {
		return nil, err
	}
	return ResolveFrames(comp.DurationInFrames), nil
}

// ResolveFrames returns [0, total) eagerly.
func ResolveFrames(total int) []pipeline.FrameIndex {
	frames := make([]pipeline.FrameIndex, total)
	for i := range frames {
		frames[i] = i
	}
	return frames
}

// Validate checks that the composition can be rendered.
func Validate(comp pipeline.Composition) error {
	switch {
	case comp.DurationInFrames <= 0:
		return &pipeline.InvalidCompositionError{Field: "durationInFrames", Reason: "must be positive"}
	case comp.FPS <= 0:
		return &pipeline.InvalidCompositionError{Field: "fps", Reason: "must be positive"}
	case comp.Width <= 0:
		return &pipeline.InvalidCompositionError{Field: "width", Reason: "must be positive"}
	case comp.Height <= 0:
		return &pipeline.InvalidCompositionError{Field: "height", Reason: "must be positive"}
	case comp.URL == "":
		return &pipeline.InvalidCompositionError{Field: "url", Reason: "must not be empty"}
	}

	u, err := url.Parse(comp.URL)
	if err != nil {
		return &pipeline.InvalidCompositionError{Field: "url", Reason: err.Error()}
	}
	if u.Scheme == "" || (u.Host == "" && u.Scheme != "file") {
		return &pipeline.InvalidCompositionError{Field: "url", Reason: "must be absolute"}
	}
	return nil
}
