// Package capture implements the per-frame rendering stage.
package capture

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/user/framecast/pkg/pipeline"
	"github.com/user/framecast/pkg/ports"
)

// Readiness polling backoff bounds.
const (
	initialPollInterval = 10 * time.Millisecond
	maxPollInterval     = 250 * time.Millisecond
)

const transparentBackground = `document.body.style.background = 'transparent'`

// Renderer captures single frames on a surface.
type Renderer struct {
	fs       ports.FileSystem
	logger   ports.Logger
	settings pipeline.CaptureSettings

	// sleep waits between readiness polls; replaced in tests.
	sleep func(ctx context.Context, d time.Duration) error
}

// New creates a frame renderer.
func New(fs ports.FileSystem, logger ports.Logger, settings pipeline.CaptureSettings) *Renderer {
	defaults := pipeline.DefaultCaptureSettings()
	if settings.Selector == "" {
		settings.Selector = defaults.Selector
	}
	if settings.ReadyExpression == "" {
		settings.ReadyExpression = defaults.ReadyExpression
	}
	if settings.ReadyTimeoutMs <= 0 {
		settings.ReadyTimeoutMs = defaults.ReadyTimeoutMs
	}
	if !settings.Format.Valid() {
		settings.Format = defaults.Format
	}
	return &Renderer{
		fs:       fs,
		logger:   logger.WithComponent("capture"),
		settings: settings,
		sleep:    sleepContext,
	}
}

// Settings returns the effective capture settings.
func (r *Renderer) Settings() pipeline.CaptureSettings {
	return r.settings
}

// CaptureFrame renders job on surface and writes the image to its
// deterministic path. Nothing is left on disk when it fails.
func (r *Renderer) CaptureFrame(ctx context.Context, surface ports.Surface, job pipeline.FrameJob) (pipeline.CapturedFrame, error) {
	start := time.Now()
	comp := job.Composition
	errs := &pageErrors{}

	if err := surface.SetViewport(ctx, comp.Width, comp.Height, 1); err != nil {
		return pipeline.CapturedFrame{}, r.renderError(job, "set viewport", err, errs)
	}

	unsubscribe := surface.Subscribe(errs.observe)
	defer unsubscribe()

	frameURL, err := comp.FrameURL(job.Index)
	if err != nil {
		return pipeline.CapturedFrame{}, r.renderError(job, "build url", err, errs)
	}
	r.logger.Debug("Navigating to %s", frameURL)
	if err := surface.Navigate(ctx, frameURL); err != nil {
		return pipeline.CapturedFrame{}, r.renderError(job, "navigate", err, errs)
	}

	if err := r.waitReady(ctx, surface, job, errs); err != nil {
		return pipeline.CapturedFrame{}, err
	}

	rect, err := r.locate(ctx, surface, job, errs)
	if err != nil {
		return pipeline.CapturedFrame{}, err
	}

	if err := surface.Evaluate(ctx, transparentBackground, nil); err != nil {
		return pipeline.CapturedFrame{}, r.renderError(job, "set background", err, errs)
	}

	opts := ports.ScreenshotOptions{
		Clip:           rect,
		Format:         r.settings.Format,
		OmitBackground: true,
	}
	if r.settings.Format == ports.FormatJPEG {
		opts.Quality = r.settings.Quality
	}
	data, err := surface.Screenshot(ctx, opts)
	if err != nil {
		return pipeline.CapturedFrame{}, r.renderError(job, "screenshot", err, errs)
	}

	path, err := r.writeAtomic(job.Index, data)
	if err != nil {
		return pipeline.CapturedFrame{}, r.renderError(job, "write", err, errs)
	}

	r.logger.Debug("Frame %d captured in %dms", job.Index, time.Since(start).Milliseconds())
	return pipeline.CapturedFrame{
		Index:   job.Index,
		Path:    path,
		Format:  r.settings.Format,
		Quality: opts.Quality,
	}, nil
}

// waitReady polls the readiness expression with exponential backoff until
// it is true or the timeout elapses.
func (r *Renderer) waitReady(ctx context.Context, surface ports.Surface, job pipeline.FrameJob, errs *pageErrors) error {
	timeout := time.Duration(r.settings.ReadyTimeoutMs) * time.Millisecond
	pollCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	interval := initialPollInterval
	for {
		var ready bool
		evalErr := surface.Evaluate(pollCtx, r.settings.ReadyExpression, &ready)
		if evalErr == nil && ready {
			return nil
		}
		if evalErr != nil {
			r.logger.Debug("Readiness check failed for frame %d: %v", job.Index, evalErr)
		}

		if err := r.sleep(pollCtx, interval); err != nil {
			if ctx.Err() != nil {
				return r.renderError(job, "wait ready", ctx.Err(), errs)
			}
			return &pipeline.ReadinessTimeoutError{
				Frame:      job.Index,
				Expression: r.settings.ReadyExpression,
				TimeoutMs:  r.settings.ReadyTimeoutMs,
				PageErrors: errs.list(),
			}
		}

		interval *= 2
		if interval > maxPollInterval {
			interval = maxPollInterval
		}
	}
}

type elementRect struct {
	Found bool `json:"found"`
	ports.Rect
}

func rectScript(selector string) string {
	sel, _ := json.Marshal(selector)
	return fmt.Sprintf(`(() => {
	const el = document.querySelector(%s);
	if (!el) return {found: false, x: 0, y: 0, width: 0, height: 0};
	const r = el.getBoundingClientRect();
	return {found: true, x: r.x, y: r.y, width: r.width, height: r.height};
})()`, sel)
}

func (r *Renderer) locate(ctx context.Context, surface ports.Surface, job pipeline.FrameJob, errs *pageErrors) (ports.Rect, error) {
	var found elementRect
	if err := surface.Evaluate(ctx, rectScript(r.settings.Selector), &found); err != nil {
		return ports.Rect{}, r.renderError(job, "locate element", err, errs)
	}
	if !found.Found {
		return ports.Rect{}, &pipeline.ElementNotFoundError{
			Frame:      job.Index,
			Selector:   r.settings.Selector,
			PageErrors: errs.list(),
		}
	}
	if found.Width <= 0 || found.Height <= 0 {
		return ports.Rect{}, r.renderError(job, "locate element",
			fmt.Errorf("element %q has empty size %.0fx%.0f", r.settings.Selector, found.Width, found.Height), errs)
	}
	return found.Rect, nil
}

// writeAtomic writes data to a temp file next to the final path and renames it.
func (r *Renderer) writeAtomic(index pipeline.FrameIndex, data []byte) (string, error) {
	final := pipeline.FramePath(r.settings.Dir, index, r.settings.Format)
	tmp := filepath.Join(r.settings.Dir, fmt.Sprintf(".%d.%s.tmp", index, r.settings.Format.Extension()))

	if err := r.fs.WriteFile(tmp, data); err != nil {
		_ = r.fs.Remove(tmp)
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := r.fs.Rename(tmp, final); err != nil {
		_ = r.fs.Remove(tmp)
		return "", fmt.Errorf("rename frame: %w", err)
	}
	return final, nil
}

func (r *Renderer) renderError(job pipeline.FrameJob, step string, cause error, errs *pageErrors) error {
	return &pipeline.FrameRenderError{
		Frame:      job.Index,
		Step:       step,
		Cause:      cause,
		PageErrors: errs.list(),
	}
}

// pageErrors collects error events raised while a frame renders.
type pageErrors struct {
	mu       sync.Mutex
	messages []string
}

func (p *pageErrors) observe(ev ports.PageEvent) {
	if !ev.IsError() {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, ev.Message)
}

func (p *pageErrors) list() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.messages) == 0 {
		return nil
	}
	return append([]string(nil), p.messages...)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
