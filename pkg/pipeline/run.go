package pipeline

import (
	"fmt"
	"sort"
	"sync"
)

// RenderRun is the aggregate state of one full render. It is safe for
// concurrent use by pool workers.
//
// Invariants: completed and failed are disjoint subsets of [0, total), and
// an index is claimed by at most one worker at a time.
type RenderRun struct {
	ID          string
	Composition Composition
	Concurrency int

	mu        sync.Mutex
	total     int
	claimed   map[FrameIndex]int // index -> worker id
	completed map[FrameIndex]CapturedFrame
	failed    map[FrameIndex]error
}

// NewRenderRun creates the state for a run over [0, composition.DurationInFrames).
func NewRenderRun(id string, comp Composition) *RenderRun {
	return &RenderRun{
		ID:          id,
		Composition: comp,
		total:       comp.DurationInFrames,
		claimed:     make(map[FrameIndex]int),
		completed:   make(map[FrameIndex]CapturedFrame),
		failed:      make(map[FrameIndex]error),
	}
}

// Total returns the number of frames in the run.
func (r *RenderRun) Total() int {
	return r.total
}

// Claim marks index as held by worker. It fails if the index is out of
// range, already settled, or held by any worker.
func (r *RenderRun) Claim(index FrameIndex, worker int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if index < 0 || index >= r.total {
		return fmt.Errorf("claim frame %d: out of range [0,%d)", index, r.total)
	}
	if owner, ok := r.claimed[index]; ok {
		return fmt.Errorf("claim frame %d by worker %d: held by worker %d: %w", index, worker, owner, ErrFrameAlreadyClaimed)
	}
	if _, ok := r.completed[index]; ok {
		return fmt.Errorf("claim frame %d: already completed: %w", index, ErrFrameAlreadyClaimed)
	}
	if _, ok := r.failed[index]; ok {
		return fmt.Errorf("claim frame %d: already failed: %w", index, ErrFrameAlreadyClaimed)
	}
	r.claimed[index] = worker
	return nil
}

// Unclaim releases a claim without settling the frame, so it can be retried.
func (r *RenderRun) Unclaim(index FrameIndex) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.claimed, index)
}

// MarkCompleted records a captured frame and releases its claim.
func (r *RenderRun) MarkCompleted(frame CapturedFrame) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.claimed, frame.Index)
	delete(r.failed, frame.Index)
	r.completed[frame.Index] = frame
}

// MarkFailed records a permanent failure and releases its claim.
func (r *RenderRun) MarkFailed(index FrameIndex, cause error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.claimed, index)
	if _, ok := r.completed[index]; ok {
		return
	}
	r.failed[index] = cause
}

// IsTerminal reports whether every index is either completed or failed.
func (r *RenderRun) IsTerminal() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.completed)+len(r.failed) == r.total
}

// Succeeded reports whether every index completed.
func (r *RenderRun) Succeeded() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.completed) == r.total && len(r.failed) == 0
}

// Completed returns the captured frames in ascending index order.
func (r *RenderRun) Completed() []CapturedFrame {
	r.mu.Lock()
	defer r.mu.Unlock()
	frames := make([]CapturedFrame, 0, len(r.completed))
	for _, f := range r.completed {
		frames = append(frames, f)
	}
	sort.Slice(frames, func(i, j int) bool { return frames[i].Index < frames[j].Index })
	return frames
}

// Failed returns a copy of the failed set with causes.
func (r *RenderRun) Failed() map[FrameIndex]error {
	r.mu.Lock()
	defer r.mu.Unlock()
	failed := make(map[FrameIndex]error, len(r.failed))
	for i, err := range r.failed {
		failed[i] = err
	}
	return failed
}

// InFlight returns the number of currently claimed frames.
func (r *RenderRun) InFlight() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.claimed)
}

// Pending returns indices that are neither completed nor failed, ascending.
func (r *RenderRun) Pending() []FrameIndex {
	r.mu.Lock()
	defer r.mu.Unlock()
	var pending []FrameIndex
	for i := 0; i < r.total; i++ {
		if _, ok := r.completed[i]; ok {
			continue
		}
		if _, ok := r.failed[i]; ok {
			continue
		}
		pending = append(pending, i)
	}
	return pending
}

// Snapshot is a serializable view of run state.
type Snapshot struct {
	ID          string       `json:"id"`
	Composition string       `json:"composition"`
	Total       int          `json:"total"`
	Concurrency int          `json:"concurrency"`
	Completed   []FrameIndex `json:"completed"`
	Failed      []FrameIndex `json:"failed"`
}

// Snapshot returns the current state as a Snapshot.
func (r *RenderRun) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := Snapshot{
		ID:          r.ID,
		Composition: r.Composition.ID,
		Total:       r.total,
		Concurrency: r.Concurrency,
		Completed:   make([]FrameIndex, 0, len(r.completed)),
		Failed:      make([]FrameIndex, 0, len(r.failed)),
	}
	for i := range r.completed {
		s.Completed = append(s.Completed, i)
	}
	for i := range r.failed {
		s.Failed = append(s.Failed, i)
	}
	sort.Ints(s.Completed)
	sort.Ints(s.Failed)
	return s
}

// AbortError returns a RunAbortedError describing the failed set, or nil
// when nothing failed.
func (r *RenderRun) AbortError(cause error) error {
	failed := r.Failed()
	if len(failed) == 0 && cause == nil {
		return nil
	}
	return &RunAbortedError{Failed: failed, Cause: cause}
}
