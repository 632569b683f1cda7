// Package pool owns the rendering surfaces used by a render run.
package pool

import (
	"context"
	"errors"
	"sync"

	"github.com/user/framecast/pkg/metrics"
	"github.com/user/framecast/pkg/pipeline"
	"github.com/user/framecast/pkg/ports"
)

// noFrame marks a handle with no job in flight.
const noFrame = -1

// WorkerHandle is one live isolated surface. A handle runs at most one
// frame job at a time.
type WorkerHandle struct {
	ID      int
	Surface ports.Surface

	unsubscribe func()

	mu    sync.Mutex
	frame int
	busy  bool
}

// Frame returns the index in flight on the handle, or -1.
func (h *WorkerHandle) Frame() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.frame
}

// begin marks index as in flight. It fails if the handle already holds a job.
func (h *WorkerHandle) begin(index int) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.busy {
		return errors.New("worker handle already holds a job")
	}
	h.busy = true
	h.frame = index
	return nil
}

func (h *WorkerHandle) end() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.busy = false
	h.frame = noFrame
}

// Manager launches, replaces and tears down worker handles.
type Manager struct {
	launcher ports.SurfaceLauncher
	observer ports.EventObserver
	logger   ports.Logger

	mu       sync.Mutex
	handles  map[int]*WorkerHandle
	nextID   int
	released bool
}

// NewManager creates a pool manager. observer may be nil.
func NewManager(launcher ports.SurfaceLauncher, observer ports.EventObserver, logger ports.Logger) *Manager {
	return &Manager{
		launcher: launcher,
		observer: observer,
		logger:   logger.WithComponent("pool"),
		handles:  make(map[int]*WorkerHandle),
	}
}

// Acquire launches n surfaces in parallel. If any launch fails, every
// surface already started is closed and a SurfaceLaunchError is returned.
func (m *Manager) Acquire(ctx context.Context, n int) ([]*WorkerHandle, error) {
	if n < 1 {
		n = 1
	}
	m.logger.Debug("Launching %d surfaces", n)

	handles := make([]*WorkerHandle, n)
	errs := make([]error, n)

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			handles[i], errs[i] = m.launch(ctx)
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		if err == nil {
			continue
		}
		for _, h := range handles {
			if h != nil {
				m.teardown(h)
			}
		}
		return nil, err
	}

	m.logger.Debug("Pool ready with %d surfaces", n)
	return handles, nil
}

// launch starts one surface and registers it as a handle.
func (m *Manager) launch(ctx context.Context) (*WorkerHandle, error) {
	m.mu.Lock()
	if m.released {
		m.mu.Unlock()
		return nil, &pipeline.SurfaceLaunchError{Worker: -1, Cause: errors.New("pool released")}
	}
	id := m.nextID
	m.nextID++
	m.mu.Unlock()

	surface, err := m.launcher.Launch(ctx)
	if err != nil {
		metrics.SurfaceLaunchesTotal.WithLabelValues(metrics.StatusError).Inc()
		return nil, &pipeline.SurfaceLaunchError{Worker: id, Cause: err}
	}
	metrics.SurfaceLaunchesTotal.WithLabelValues(metrics.StatusSuccess).Inc()

	h := &WorkerHandle{ID: id, Surface: surface, frame: noFrame}
	if m.observer != nil {
		h.unsubscribe = surface.Subscribe(func(ev ports.PageEvent) {
			m.observer.ObservePageEvent(h.ID, h.Frame(), ev)
		})
	}

	m.mu.Lock()
	if m.released {
		// Release ran while this launch was in flight.
		m.mu.Unlock()
		m.closeSurface(h)
		return nil, &pipeline.SurfaceLaunchError{Worker: id, Cause: errors.New("pool released")}
	}
	m.handles[id] = h
	m.mu.Unlock()

	metrics.ActiveWorkers.Inc()
	return h, nil
}

// replace tears down h and launches a fresh handle in its place.
func (m *Manager) replace(ctx context.Context, h *WorkerHandle) (*WorkerHandle, error) {
	m.teardown(h)
	fresh, err := m.launch(ctx)
	if err != nil {
		return nil, err
	}
	m.logger.Debug("Replaced surface %d with %d", h.ID, fresh.ID)
	return fresh, nil
}

// teardown closes one handle and forgets it.
func (m *Manager) teardown(h *WorkerHandle) {
	m.mu.Lock()
	_, live := m.handles[h.ID]
	delete(m.handles, h.ID)
	m.mu.Unlock()

	if live {
		metrics.ActiveWorkers.Dec()
		m.closeSurface(h)
	}
}

func (m *Manager) closeSurface(h *WorkerHandle) {
	if h.unsubscribe != nil {
		h.unsubscribe()
	}
	if err := h.Surface.Close(); err != nil {
		m.logger.Warn("Failed to close surface %d: %v", h.ID, err)
	}
}

// Live returns the number of live handles.
func (m *Manager) Live() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handles)
}

// Release tears down every live handle. It is safe to call more than once.
func (m *Manager) Release() {
	m.mu.Lock()
	m.released = true
	handles := make([]*WorkerHandle, 0, len(m.handles))
	for _, h := range m.handles {
		handles = append(handles, h)
	}
	m.mu.Unlock()

	if len(handles) == 0 {
		return
	}
	m.logger.Debug("Releasing %d surfaces", len(handles))

	var wg sync.WaitGroup
	for _, h := range handles {
		wg.Add(1)
		go func(h *WorkerHandle) {
			defer wg.Done()
			m.teardown(h)
		}(h)
	}
	wg.Wait()
}
