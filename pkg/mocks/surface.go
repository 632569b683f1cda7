// Package mocks provides mock implementations for testing.
package mocks

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"github.com/user/framecast/pkg/ports"
)

// Surface is a mock implementation of ports.Surface.
// Evaluate results are returned as Go values and decoded into out through JSON.
type Surface struct {
	ID int

	SetViewportFunc func(ctx context.Context, width, height int, scale float64) error
	NavigateFunc    func(ctx context.Context, url string) error
	EvaluateFunc    func(ctx context.Context, expression string) (interface{}, error)
	ScreenshotFunc  func(ctx context.Context, opts ports.ScreenshotOptions) ([]byte, error)
	CloseFunc       func() error

	mu          sync.Mutex
	handlers    map[int]func(ports.PageEvent)
	nextHandler int
	closed      bool

	// Recorded calls for verification
	Viewports    []ViewportCall
	NavigateURLs []string
	Expressions  []string
	Screenshots  []ports.ScreenshotOptions
	CloseCalls   int
}

// ViewportCall records a call to SetViewport.
type ViewportCall struct {
	Width  int
	Height int
	Scale  float64
}

func (m *Surface) SetViewport(ctx context.Context, width, height int, scale float64) error {
	m.mu.Lock()
	m.Viewports = append(m.Viewports, ViewportCall{Width: width, Height: height, Scale: scale})
	m.mu.Unlock()
	if m.SetViewportFunc != nil {
		return m.SetViewportFunc(ctx, width, height, scale)
	}
	return nil
}

func (m *Surface) Navigate(ctx context.Context, url string) error {
	m.mu.Lock()
	m.NavigateURLs = append(m.NavigateURLs, url)
	m.mu.Unlock()
	if m.NavigateFunc != nil {
		return m.NavigateFunc(ctx, url)
	}
	return nil
}

func (m *Surface) Evaluate(ctx context.Context, expression string, out interface{}) error {
	m.mu.Lock()
	m.Expressions = append(m.Expressions, expression)
	m.mu.Unlock()

	var result interface{} = true
	if m.EvaluateFunc != nil {
		var err error
		result, err = m.EvaluateFunc(ctx, expression)
		if err != nil {
			return err
		}
	}
	if out == nil {
		return nil
	}
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, out)
}

func (m *Surface) Screenshot(ctx context.Context, opts ports.ScreenshotOptions) ([]byte, error) {
	m.mu.Lock()
	m.Screenshots = append(m.Screenshots, opts)
	m.mu.Unlock()
	if m.ScreenshotFunc != nil {
		return m.ScreenshotFunc(ctx, opts)
	}
	return []byte("image"), nil
}

func (m *Surface) Subscribe(fn func(ports.PageEvent)) func() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.handlers == nil {
		m.handlers = make(map[int]func(ports.PageEvent))
	}
	id := m.nextHandler
	m.nextHandler++
	m.handlers[id] = fn
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.handlers, id)
	}
}

// Emit delivers an event to all current subscribers.
func (m *Surface) Emit(ev ports.PageEvent) {
	m.mu.Lock()
	handlers := make([]func(ports.PageEvent), 0, len(m.handlers))
	for _, h := range m.handlers {
		handlers = append(handlers, h)
	}
	m.mu.Unlock()
	for _, h := range handlers {
		h(ev)
	}
}

// Subscribers returns the number of active subscriptions.
func (m *Surface) Subscribers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.handlers)
}

func (m *Surface) Close() error {
	m.mu.Lock()
	m.CloseCalls++
	m.closed = true
	m.mu.Unlock()
	if m.CloseFunc != nil {
		return m.CloseFunc()
	}
	return nil
}

// Closed reports whether Close was called.
func (m *Surface) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

var _ ports.Surface = (*Surface)(nil)

// ReadyPage returns an EvaluateFunc for a page that is immediately ready
// and whose root element has the given size.
func ReadyPage(width, height int) func(ctx context.Context, expression string) (interface{}, error) {
	return func(ctx context.Context, expression string) (interface{}, error) {
		if strings.Contains(expression, "getBoundingClientRect") {
			return map[string]interface{}{
				"found": true, "x": 0, "y": 0, "width": width, "height": height,
			}, nil
		}
		return true, nil
	}
}

// Launcher is a mock implementation of ports.SurfaceLauncher.
type Launcher struct {
	// LaunchFunc overrides the default, which returns a ready Surface.
	LaunchFunc func(ctx context.Context, n int) (ports.Surface, error)

	mu       sync.Mutex
	launched []ports.Surface
	calls    int
}

func (m *Launcher) Launch(ctx context.Context) (ports.Surface, error) {
	m.mu.Lock()
	n := m.calls
	m.calls++
	m.mu.Unlock()

	var s ports.Surface
	if m.LaunchFunc != nil {
		var err error
		s, err = m.LaunchFunc(ctx, n)
		if err != nil {
			return nil, err
		}
	} else {
		s = &Surface{ID: n, EvaluateFunc: ReadyPage(100, 100)}
	}

	m.mu.Lock()
	m.launched = append(m.launched, s)
	m.mu.Unlock()
	return s, nil
}

// Calls returns the number of Launch calls, including failed ones.
func (m *Launcher) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Launched returns every surface successfully launched.
func (m *Launcher) Launched() []ports.Surface {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ports.Surface(nil), m.launched...)
}

// Open returns the number of launched surfaces not yet closed.
// Only surfaces of type *Surface are counted.
func (m *Launcher) Open() int {
	open := 0
	for _, s := range m.Launched() {
		if ms, ok := s.(*Surface); ok && !ms.Closed() {
			open++
		}
	}
	return open
}

var _ ports.SurfaceLauncher = (*Launcher)(nil)
