// Package orchestrator coordinates all pipeline stages of a render run.
package orchestrator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/google/uuid"

	"github.com/user/framecast/pkg/metrics"
	"github.com/user/framecast/pkg/pipeline"
	"github.com/user/framecast/pkg/pool"
	"github.com/user/framecast/pkg/ports"
	"github.com/user/framecast/pkg/prober"
	"github.com/user/framecast/pkg/stages/capture"
	"github.com/user/framecast/pkg/stages/stitch"
)

// Config contains all configuration for one render run.
type Config struct {
	Composition pipeline.Composition

	// Output
	OutputPath string
	AudioPath  string // Optional audio track muxed into the video

	// Capture
	Capture pipeline.CaptureSettings

	// Concurrency is the number of surfaces. 0 uses the host recommendation.
	Concurrency   int
	MaxRetries    int
	FailurePolicy pool.FailurePolicy

	// Resume skips frames recorded in the run ledger whose files still exist.
	Resume bool
	// KeepFrames keeps frame images after a successful stitch.
	KeepFrames bool

	// Encoding
	Codec       string
	PixelFormat string
	CRF         int
	AudioCodec  string

	// PublishKey is the object key for the published video. Empty uses
	// the output file name.
	PublishKey string
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() Config {
	stitchDefaults := pipeline.DefaultStitchInput()
	return Config{
		OutputPath:    "out.mp4",
		Capture:       pipeline.DefaultCaptureSettings(),
		MaxRetries:    1,
		FailurePolicy: pool.FailFast,
		Codec:         stitchDefaults.Codec,
		PixelFormat:   stitchDefaults.PixelFormat,
		CRF:           stitchDefaults.CRF,
		AudioCodec:    stitchDefaults.AudioCodec,
	}
}

// Dependencies are the collaborators of an Orchestrator. Ledger,
// Publisher, Inspector, Observer and ContactSheet may be nil.
type Dependencies struct {
	Validator    *stitch.Validator
	Resolve      pipeline.Stage[pipeline.Composition, []pipeline.FrameIndex]
	Stitch       pipeline.Stage[pipeline.StitchInput, pipeline.StitchResult]
	ContactSheet pipeline.Stage[pipeline.ContactSheetInput, image.Image]

	Launcher  ports.SurfaceLauncher
	Observer  ports.EventObserver
	Ledger    ports.RunLedger
	Publisher ports.Publisher
	Inspector ports.VideoInspector

	// Recommend returns the host concurrency. Defaults to prober.Recommend.
	Recommend func() int

	FS     ports.FileSystem
	Sink   ports.DebugSink
	Logger ports.Logger
}

// Orchestrator coordinates the execution of all pipeline stages.
type Orchestrator struct {
	deps Dependencies
}

// New creates a new Orchestrator.
func New(deps Dependencies) *Orchestrator {
	if deps.Recommend == nil {
		deps.Recommend = prober.Recommend
	}
	return &Orchestrator{deps: deps}
}

// RunResult describes a finished or aborted render run.
type RunResult struct {
	RunID       string
	Composition string
	OutputPath  string
	Location    string // Remote location when published

	TotalFrames   int
	Captured      int // Frames captured in this run
	Resumed       int // Frames reused from a previous run
	FailedFrames  []pipeline.FrameIndex
	Concurrency   int
	FPS           float64
	Width         int
	Height        int
	VideoDuration int // in ms
	Video         *ports.VideoInfo

	CaptureDuration time.Duration
	StitchDuration  time.Duration
	TotalDuration   time.Duration
}

// RunKey identifies the frames of a composition across runs.
func RunKey(c pipeline.Composition, format ports.ImageFormat) string {
	return fmt.Sprintf("%s-%dx%d-%gfps-%d-%s", c.ID, c.Width, c.Height, c.FPS, c.DurationInFrames, format)
}

// Run executes the complete pipeline. On failure the returned RunResult
// still describes what was done; captured frames stay on disk.
func (o *Orchestrator) Run(ctx context.Context, cfg Config) (result RunResult, err error) {
	start := time.Now()
	logger := o.deps.Logger
	comp := cfg.Composition

	result = RunResult{
		RunID:       uuid.NewString(),
		Composition: comp.ID,
		OutputPath:  cfg.OutputPath,
		TotalFrames: comp.DurationInFrames,
		FPS:         comp.FPS,
		Width:       comp.Width,
		Height:      comp.Height,
	}
	defer func() {
		result.TotalDuration = time.Since(start)
		metrics.RunDurationSeconds.Observe(result.TotalDuration.Seconds())
		status := metrics.StatusSuccess
		if errors.Is(err, pipeline.ErrRunAborted) {
			status = metrics.StatusAborted
		} else if err != nil {
			status = metrics.StatusError
		}
		metrics.RunsTotal.WithLabelValues(status).Inc()
	}()

	logger.Info("Starting render of %s", comp.ID)

	// 1. Fail fast on a missing encoder before any surface is launched.
	if err := o.deps.Validator.Validate(ctx); err != nil {
		logger.Error("Encoder unavailable: %s", err)
		return result, err
	}
	logger.Debug("Using %s", o.deps.Validator.Version())

	// 2. Resolve frames
	frames, err := o.deps.Resolve.Execute(ctx, comp)
	if err != nil {
		logger.Error("Invalid composition: %s", err)
		return result, err
	}
	logger.Info("Resolved %d frames at %g fps", len(frames), comp.FPS)

	run := pipeline.NewRenderRun(result.RunID, comp)
	if err := o.deps.FS.MkdirAll(cfg.Capture.Dir); err != nil {
		return result, fmt.Errorf("create frames directory: %w", err)
	}

	runKey := RunKey(comp, cfg.Capture.Format)
	result.Resumed = o.restore(ctx, cfg, runKey, run)

	// 3. Capture
	captureStart := time.Now()
	captureErr := o.capture(ctx, cfg, runKey, run, &result)
	result.CaptureDuration = time.Since(captureStart)
	snapshot := run.Snapshot()
	result.FailedFrames = snapshot.Failed
	result.Captured = len(snapshot.Completed) - result.Resumed
	if captureErr != nil {
		logger.Error("Render aborted: %s", captureErr)
		o.saveManifest(snapshot, result, captureErr)
		return result, captureErr
	}
	logger.Info("Captured %d frames in %d ms", result.Captured, result.CaptureDuration.Milliseconds())

	// 4. Stitch
	input := o.buildStitchInput(cfg, run)
	logger.Info("Stitching %d frames into %s", len(input.Frames), cfg.OutputPath)
	stitchStart := time.Now()
	stitched, err := o.deps.Stitch.Execute(ctx, input)
	result.StitchDuration = time.Since(stitchStart)
	if err != nil {
		logger.Error("Failed to stitch video: %s", err)
		logger.Info("Frames kept in %s", cfg.Capture.Dir)
		o.saveManifest(snapshot, result, err)
		return result, fmt.Errorf("stitch stage: %w", err)
	}
	result.VideoDuration = stitched.DurationMs

	o.verify(cfg.OutputPath, comp.DurationInFrames, &result)
	o.saveContactSheet(ctx, run.Completed())

	// 5. Publish
	if o.deps.Publisher != nil {
		key := cfg.PublishKey
		if key == "" {
			key = baseName(cfg.OutputPath)
		}
		location, err := o.deps.Publisher.Publish(ctx, cfg.OutputPath, key)
		if err != nil {
			logger.Error("Failed to publish video: %s", err)
			o.saveManifest(snapshot, result, err)
			return result, fmt.Errorf("publish: %w", err)
		}
		result.Location = location
		logger.Info("Published to %s", location)
	}

	if !cfg.KeepFrames {
		o.cleanup(ctx, runKey, run.Completed())
	}

	o.saveManifest(snapshot, result, nil)
	logger.Info("Render completed successfully")
	return result, nil
}

// restore marks frames from an earlier run as completed. It returns the
// number of frames reused.
func (o *Orchestrator) restore(ctx context.Context, cfg Config, runKey string, run *pipeline.RenderRun) int {
	ledger := o.deps.Ledger
	if ledger == nil {
		return 0
	}
	logger := o.deps.Logger

	if !cfg.Resume {
		if err := ledger.Reset(ctx, runKey); err != nil {
			logger.Warn("Failed to reset run ledger: %s", err)
		}
		return 0
	}

	indices, err := ledger.Completed(ctx, runKey)
	if err != nil {
		logger.Warn("Failed to read run ledger, capturing every frame: %s", err)
		return 0
	}

	reused := 0
	for _, index := range indices {
		if index < 0 || index >= run.Total() {
			continue
		}
		path := pipeline.FramePath(cfg.Capture.Dir, index, cfg.Capture.Format)
		if exists, err := o.deps.FS.Exists(path); err != nil || !exists {
			continue
		}
		run.MarkCompleted(pipeline.CapturedFrame{
			Index:   index,
			Path:    path,
			Format:  cfg.Capture.Format,
			Quality: cfg.Capture.Quality,
		})
		reused++
	}
	if reused > 0 {
		logger.Info("Resuming: %d of %d frames already captured", reused, run.Total())
	}
	return reused
}

// capture launches the pool and renders every pending frame.
func (o *Orchestrator) capture(ctx context.Context, cfg Config, runKey string, run *pipeline.RenderRun, result *RunResult) error {
	pending := run.Pending()
	if len(pending) == 0 {
		return nil
	}

	concurrency := prober.Clamp(cfg.Concurrency, len(pending), o.deps.Recommend)
	run.Concurrency = concurrency
	result.Concurrency = concurrency

	jobs := make([]pipeline.FrameJob, len(pending))
	for i, index := range pending {
		jobs[i] = pipeline.FrameJob{Index: index, Composition: run.Composition}
	}

	renderer := capture.New(o.deps.FS, o.deps.Logger, cfg.Capture)
	manager := pool.NewManager(o.deps.Launcher, o.deps.Observer, o.deps.Logger)
	defer manager.Release()

	o.deps.Logger.Info("Launching %d surfaces", concurrency)
	handles, err := manager.Acquire(ctx, concurrency)
	if err != nil {
		return err
	}

	opts := pool.DefaultRunOptions()
	opts.MaxRetries = cfg.MaxRetries
	opts.Policy = cfg.FailurePolicy
	opts.OnCaptured = o.progress(ctx, runKey, len(pending))

	return manager.Run(ctx, run, handles, jobs, renderer.CaptureFrame, opts)
}

// progress returns the per-frame callback that records frames in the
// ledger and reports progress.
func (o *Orchestrator) progress(ctx context.Context, runKey string, total int) func(pipeline.CapturedFrame) {
	counter := newCounter()
	step := total / 10
	if step < 1 {
		step = 1
	}
	return func(frame pipeline.CapturedFrame) {
		if o.deps.Ledger != nil {
			if err := o.deps.Ledger.MarkCompleted(ctx, runKey, frame.Index); err != nil {
				o.deps.Logger.Warn("Failed to record frame %d in run ledger: %s", frame.Index, err)
			}
		}
		if n := counter.inc(); n%step == 0 || n == total {
			o.deps.Logger.Info("Captured %d/%d frames", n, total)
		}
	}
}

func (o *Orchestrator) buildStitchInput(cfg Config, run *pipeline.RenderRun) pipeline.StitchInput {
	return pipeline.StitchInput{
		Frames:      run.Completed(),
		Total:       run.Total(),
		OutputPath:  cfg.OutputPath,
		FPS:         run.Composition.FPS,
		AudioPath:   cfg.AudioPath,
		Codec:       cfg.Codec,
		PixelFormat: cfg.PixelFormat,
		CRF:         cfg.CRF,
		AudioCodec:  cfg.AudioCodec,
	}
}

// verify inspects the output and warns when its frame count is off.
func (o *Orchestrator) verify(path string, total int, result *RunResult) {
	if o.deps.Inspector == nil {
		return
	}
	info, err := o.deps.Inspector.Inspect(path)
	if err != nil {
		o.deps.Logger.Debug("Could not inspect %s: %s", path, err)
		return
	}
	result.Video = &info
	if info.FrameCount != total {
		o.deps.Logger.Warn("Video has %d frames, expected %d", info.FrameCount, total)
	}
}

func (o *Orchestrator) saveContactSheet(ctx context.Context, frames []pipeline.CapturedFrame) {
	if o.deps.ContactSheet == nil || !o.deps.Sink.Enabled() {
		return
	}
	input := pipeline.DefaultContactSheetInput()
	input.Frames = frames
	img, err := o.deps.ContactSheet.Execute(ctx, input)
	if err != nil {
		o.deps.Logger.Warn("Failed to build contact sheet: %s", err)
		return
	}
	if err := o.deps.Sink.SaveContactSheet(img); err != nil {
		o.deps.Logger.Warn("Failed to save contact sheet: %s", err)
	}
}

// cleanup removes frame files and forgets the run in the ledger.
func (o *Orchestrator) cleanup(ctx context.Context, runKey string, frames []pipeline.CapturedFrame) {
	for _, f := range frames {
		if err := o.deps.FS.Remove(f.Path); err != nil {
			o.deps.Logger.Debug("Failed to remove %s: %s", f.Path, err)
		}
	}
	if o.deps.Ledger != nil {
		if err := o.deps.Ledger.Reset(ctx, runKey); err != nil {
			o.deps.Logger.Debug("Failed to reset run ledger: %s", err)
		}
	}
}

// manifest is the debug record of a run.
type manifest struct {
	Run      pipeline.Snapshot `json:"run"`
	Result   RunResult         `json:"result"`
	Error    string            `json:"error,omitempty"`
	Failures map[int]string    `json:"failures,omitempty"`
}

func (o *Orchestrator) saveManifest(snapshot pipeline.Snapshot, result RunResult, runErr error) {
	if !o.deps.Sink.Enabled() {
		return
	}
	m := manifest{Run: snapshot, Result: result}
	if runErr != nil {
		m.Error = runErr.Error()
		var aborted *pipeline.RunAbortedError
		if errors.As(runErr, &aborted) && len(aborted.Failed) > 0 {
			m.Failures = make(map[int]string, len(aborted.Failed))
			for i, cause := range aborted.Failed {
				m.Failures[i] = cause.Error()
			}
		}
	}
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return
	}
	if err := o.deps.Sink.SaveRunJSON(data); err != nil {
		o.deps.Logger.Debug("Failed to save run manifest: %s", err)
	}
}
