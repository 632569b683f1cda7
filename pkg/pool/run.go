package pool

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/user/framecast/pkg/metrics"
	"github.com/user/framecast/pkg/pipeline"
	"github.com/user/framecast/pkg/ports"
)

// FailurePolicy decides what happens after a frame fails permanently.
// No policy ever produces a video with missing frames.
type FailurePolicy string

const (
	// FailFast cancels outstanding jobs at the first permanent failure.
	FailFast FailurePolicy = "fail-fast"
	// CompleteThenFail captures every frame it can, then aborts with the
	// full list of failures.
	CompleteThenFail FailurePolicy = "complete-then-fail"
)

// ParseFailurePolicy parses a policy name. The empty string means FailFast.
func ParseFailurePolicy(s string) (FailurePolicy, error) {
	switch FailurePolicy(s) {
	case "", FailFast:
		return FailFast, nil
	case CompleteThenFail:
		return CompleteThenFail, nil
	}
	return "", fmt.Errorf("unknown failure policy %q", s)
}

// CaptureFunc renders one job on a surface.
type CaptureFunc func(ctx context.Context, surface ports.Surface, job pipeline.FrameJob) (pipeline.CapturedFrame, error)

// RunOptions configures Run.
type RunOptions struct {
	// MaxRetries is the number of retries on a fresh surface after the
	// first failure of a frame. A negative value disables retries.
	MaxRetries int
	Policy     FailurePolicy

	// OnCaptured is called after each frame completes. It must be safe
	// for concurrent use.
	OnCaptured func(pipeline.CapturedFrame)
}

// DefaultRunOptions returns RunOptions with default values.
func DefaultRunOptions() RunOptions {
	return RunOptions{MaxRetries: 1, Policy: FailFast}
}

// Run distributes jobs over handles through a shared queue. Each handle
// takes the next job when it finishes the previous one. A failed frame is
// retried on a replacement handle; failure to launch a replacement aborts
// the run. Run returns a RunAbortedError when any frame failed or the run
// was aborted, and nil when every job completed.
func (m *Manager) Run(ctx context.Context, run *pipeline.RenderRun, handles []*WorkerHandle, jobs []pipeline.FrameJob, capture CaptureFunc, opts RunOptions) error {
	if opts.Policy == "" {
		opts.Policy = FailFast
	}
	if len(jobs) == 0 {
		return nil
	}
	if len(handles) == 0 {
		return &pipeline.RunAbortedError{Cause: errors.New("no worker handles")}
	}

	queue := make(chan pipeline.FrameJob, len(jobs))
	for _, job := range jobs {
		queue <- job
	}
	close(queue)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := &runWorker{
		m:       m,
		run:     run,
		capture: capture,
		opts:    opts,
		cancel:  cancel,
	}

	var wg sync.WaitGroup
	for _, h := range handles {
		wg.Add(1)
		go func(h *WorkerHandle) {
			defer wg.Done()
			w.loop(runCtx, h, queue)
		}(h)
	}
	wg.Wait()

	if cause := w.fatalErr(); cause != nil {
		return run.AbortError(cause)
	}
	if len(run.Failed()) > 0 {
		return run.AbortError(nil)
	}
	if err := ctx.Err(); err != nil {
		return run.AbortError(err)
	}
	return nil
}

// runWorker holds the state shared by the goroutines of one Run.
type runWorker struct {
	m       *Manager
	run     *pipeline.RenderRun
	capture CaptureFunc
	opts    RunOptions
	cancel  context.CancelFunc

	mu    sync.Mutex
	fatal error
}

func (w *runWorker) abort(err error) {
	w.mu.Lock()
	if w.fatal == nil {
		w.fatal = err
	}
	w.mu.Unlock()
	w.cancel()
}

func (w *runWorker) fatalErr() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.fatal
}

// loop pulls jobs until the queue is empty or the run is canceled.
func (w *runWorker) loop(ctx context.Context, h *WorkerHandle, queue <-chan pipeline.FrameJob) {
	for job := range queue {
		if ctx.Err() != nil {
			return
		}
		if err := w.run.Claim(job.Index, h.ID); err != nil {
			w.abort(err)
			return
		}

		next, ok := w.process(ctx, h, job)
		if !ok {
			return
		}
		h = next
	}
}

// process captures one job with retries. It returns the handle to use for
// the next job and false when the worker must stop.
func (w *runWorker) process(ctx context.Context, h *WorkerHandle, job pipeline.FrameJob) (*WorkerHandle, bool) {
	logger := w.m.logger
	for attempt := 0; ; attempt++ {
		job.Attempt = attempt

		if err := h.begin(job.Index); err != nil {
			w.run.Unclaim(job.Index)
			w.abort(err)
			return h, false
		}
		start := time.Now()
		frame, err := w.capture(ctx, h.Surface, job)
		h.end()

		if err == nil {
			metrics.FrameCaptureSeconds.Observe(time.Since(start).Seconds())
			metrics.FramesCapturedTotal.Inc()
			w.run.MarkCompleted(frame)
			if w.opts.OnCaptured != nil {
				w.opts.OnCaptured(frame)
			}
			return h, true
		}

		if ctx.Err() != nil {
			// Canceled runs leave the frame unsettled rather than failed.
			w.run.Unclaim(job.Index)
			return h, false
		}

		exhausted := attempt >= w.opts.MaxRetries
		if exhausted {
			logger.Warn("Frame %d failed permanently after %d attempts: %v", job.Index, attempt+1, err)
			metrics.FramesFailedTotal.WithLabelValues(failureReason(err)).Inc()
			w.run.MarkFailed(job.Index, err)
			if w.opts.Policy == FailFast {
				w.cancel()
				w.m.teardown(h)
				return h, false
			}
		} else {
			logger.Warn("Frame %d failed on surface %d, retrying on a fresh surface: %v", job.Index, h.ID, err)
			metrics.FramesRetriedTotal.Inc()
		}

		fresh, lerr := w.m.replace(ctx, h)
		if lerr != nil {
			if ctx.Err() != nil {
				if !exhausted {
					w.run.Unclaim(job.Index)
				}
				return h, false
			}
			if !exhausted {
				w.run.MarkFailed(job.Index, err)
			}
			w.abort(lerr)
			return h, false
		}
		h = fresh

		if exhausted {
			return h, true
		}
	}
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, pipeline.ErrReadinessTimeout):
		return "readiness_timeout"
	case errors.Is(err, pipeline.ErrElementNotFound):
		return "element_not_found"
	default:
		return "render"
	}
}
