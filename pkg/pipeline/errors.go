package pipeline

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinels matched with errors.Is. The typed errors below unwrap to them.
var (
	ErrSurfaceLaunch       = errors.New("surface launch failed")
	ErrReadinessTimeout    = errors.New("readiness timeout")
	ErrElementNotFound     = errors.New("element not found")
	ErrFrameRender         = errors.New("frame render failed")
	ErrInvalidComposition  = errors.New("invalid composition")
	ErrEncoderUnavailable  = errors.New("encoder unavailable")
	ErrStitch              = errors.New("stitch failed")
	ErrEncoderProcess      = errors.New("encoder process failed")
	ErrRunAborted          = errors.New("render run aborted")
	ErrFrameAlreadyClaimed = errors.New("frame already claimed")
)

// SurfaceLaunchError means a rendering surface could not start. It is fatal to the run.
type SurfaceLaunchError struct {
	Worker int
	Cause  error
}

func (e *SurfaceLaunchError) Error() string {
	return fmt.Sprintf("launch surface %d: %v", e.Worker, e.Cause)
}

func (e *SurfaceLaunchError) Unwrap() []error { return []error{ErrSurfaceLaunch, e.Cause} }

// ReadinessTimeoutError means the readiness expression never became true.
type ReadinessTimeoutError struct {
	Frame      FrameIndex
	Expression string
	TimeoutMs  int
	PageErrors []string
}

func (e *ReadinessTimeoutError) Error() string {
	msg := fmt.Sprintf("frame %d: %q not true after %dms", e.Frame, e.Expression, e.TimeoutMs)
	return withPageErrors(msg, e.PageErrors)
}

func (e *ReadinessTimeoutError) Unwrap() error { return ErrReadinessTimeout }

// ElementNotFoundError means the root element was absent, so the composition failed to mount.
type ElementNotFoundError struct {
	Frame      FrameIndex
	Selector   string
	PageErrors []string
}

func (e *ElementNotFoundError) Error() string {
	msg := fmt.Sprintf("frame %d: could not find element that matches selector %q", e.Frame, e.Selector)
	return withPageErrors(msg, e.PageErrors)
}

func (e *ElementNotFoundError) Unwrap() error { return ErrElementNotFound }

// FrameRenderError is a generic per-frame capture failure.
type FrameRenderError struct {
	Frame      FrameIndex
	Step       string
	Cause      error
	PageErrors []string
}

func (e *FrameRenderError) Error() string {
	msg := fmt.Sprintf("frame %d: %s: %v", e.Frame, e.Step, e.Cause)
	return withPageErrors(msg, e.PageErrors)
}

func (e *FrameRenderError) Unwrap() []error { return []error{ErrFrameRender, e.Cause} }

// InvalidCompositionError is raised before any work starts.
type InvalidCompositionError struct {
	Field  string
	Reason string
}

func (e *InvalidCompositionError) Error() string {
	return fmt.Sprintf("invalid composition: %s %s", e.Field, e.Reason)
}

func (e *InvalidCompositionError) Unwrap() error { return ErrInvalidComposition }

// EncoderUnavailableError means the encoder binary is missing or unusable.
type EncoderUnavailableError struct {
	Cause error
}

func (e *EncoderUnavailableError) Error() string {
	if e.Cause == nil {
		return "encoder unavailable: validation has not succeeded"
	}
	return fmt.Sprintf("encoder unavailable: %v", e.Cause)
}

func (e *EncoderUnavailableError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrEncoderUnavailable}
	}
	return []error{ErrEncoderUnavailable, e.Cause}
}

// StitchError is a precondition violation detected before the encoder runs.
type StitchError struct {
	Reason string
	Frames []FrameIndex // offending indices, if any
}

func (e *StitchError) Error() string {
	if len(e.Frames) == 0 {
		return "stitch: " + e.Reason
	}
	return fmt.Sprintf("stitch: %s: %s", e.Reason, joinIndices(e.Frames))
}

func (e *StitchError) Unwrap() error { return ErrStitch }

// EncoderProcessError means the encoder exited non-zero.
type EncoderProcessError struct {
	ExitCode int
	Stderr   string
	Cause    error
}

func (e *EncoderProcessError) Error() string {
	return fmt.Sprintf("encoder exited with code %d: %s", e.ExitCode, lastLines(e.Stderr, 5))
}

func (e *EncoderProcessError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrEncoderProcess}
	}
	return []error{ErrEncoderProcess, e.Cause}
}

// RunAbortedError lists every permanently failed frame with its cause.
type RunAbortedError struct {
	Failed map[FrameIndex]error
	Cause  error // pool-level cause, if the run was aborted by one
}

// Indices returns the failed frame indices in ascending order.
func (e *RunAbortedError) Indices() []FrameIndex {
	indices := make([]FrameIndex, 0, len(e.Failed))
	for i := range e.Failed {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	return indices
}

func (e *RunAbortedError) Error() string {
	var b strings.Builder
	b.WriteString("render run aborted")
	if e.Cause != nil {
		fmt.Fprintf(&b, ": %v", e.Cause)
	}
	if len(e.Failed) > 0 {
		fmt.Fprintf(&b, ": failed frames [%s]", joinIndices(e.Indices()))
		for _, i := range e.Indices() {
			fmt.Fprintf(&b, "\n  frame %d: %v", i, e.Failed[i])
		}
	}
	return b.String()
}

func (e *RunAbortedError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrRunAborted}
	}
	return []error{ErrRunAborted, e.Cause}
}

func withPageErrors(msg string, pageErrors []string) string {
	if len(pageErrors) == 0 {
		return msg
	}
	return msg + " (page errors: " + strings.Join(pageErrors, "; ") + ")"
}

func joinIndices(indices []FrameIndex) string {
	parts := make([]string, len(indices))
	for i, idx := range indices {
		parts[i] = fmt.Sprint(idx)
	}
	return strings.Join(parts, ", ")
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
