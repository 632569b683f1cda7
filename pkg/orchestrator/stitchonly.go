package orchestrator

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/user/framecast/pkg/pipeline"
	"github.com/user/framecast/pkg/ports"
	"github.com/user/framecast/pkg/stages/stitch"
)

// StitchConfig configures stitching frames that are already on disk.
type StitchConfig struct {
	FramesDir  string
	Format     ports.ImageFormat
	FPS        float64
	Total      int // Expected frame count; 0 derives it from the highest index
	OutputPath string
	AudioPath  string

	Codec       string
	PixelFormat string
	CRF         int
	AudioCodec  string
}

// Stitch assembles {index}.{ext} files from a frames directory into a
// video. It lets a run whose capture finished be re-stitched without
// rendering again; gaps are reported, never skipped.
func (o *Orchestrator) Stitch(ctx context.Context, cfg StitchConfig) (pipeline.StitchResult, error) {
	logger := o.deps.Logger

	if err := o.deps.Validator.Validate(ctx); err != nil {
		logger.Error("Encoder unavailable: %s", err)
		return pipeline.StitchResult{}, err
	}

	frames, err := stitch.ScanFrames(o.deps.FS, cfg.FramesDir, cfg.Format)
	if err != nil {
		return pipeline.StitchResult{}, err
	}
	total := cfg.Total
	if total <= 0 {
		total = stitch.HighestIndex(frames) + 1
	}
	logger.Info("Found %d frames in %s", len(frames), cfg.FramesDir)

	result, err := o.deps.Stitch.Execute(ctx, pipeline.StitchInput{
		Frames:      frames,
		Total:       total,
		OutputPath:  cfg.OutputPath,
		FPS:         cfg.FPS,
		AudioPath:   cfg.AudioPath,
		Codec:       cfg.Codec,
		PixelFormat: cfg.PixelFormat,
		CRF:         cfg.CRF,
		AudioCodec:  cfg.AudioCodec,
	})
	if err != nil {
		logger.Error("Failed to stitch video: %s", err)
		return result, fmt.Errorf("stitch stage: %w", err)
	}
	logger.Info("Video written to %s", cfg.OutputPath)
	return result, nil
}

// counter is a concurrency-safe progress counter.
type counter struct {
	mu sync.Mutex
	n  int
}

func newCounter() *counter {
	return &counter{}
}

func (c *counter) inc() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return c.n
}

func baseName(path string) string {
	return filepath.Base(path)
}
