package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/user/framecast/pkg/ports"
)

// Ledger is an in-memory mock of ports.RunLedger.
type Ledger struct {
	mu   sync.Mutex
	runs map[string]map[int]bool

	CompletedFunc func(ctx context.Context, runKey string) ([]int, error)
	ResetCalls    []string
	Closed        bool
}

// NewLedger creates an empty Ledger.
func NewLedger() *Ledger {
	return &Ledger{runs: make(map[string]map[int]bool)}
}

func (m *Ledger) Completed(ctx context.Context, runKey string) ([]int, error) {
	if m.CompletedFunc != nil {
		return m.CompletedFunc(ctx, runKey)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var indices []int
	for i := range m.runs[runKey] {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	return indices, nil
}

func (m *Ledger) MarkCompleted(ctx context.Context, runKey string, index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.runs[runKey] == nil {
		m.runs[runKey] = make(map[int]bool)
	}
	m.runs[runKey][index] = true
	return nil
}

func (m *Ledger) Reset(ctx context.Context, runKey string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResetCalls = append(m.ResetCalls, runKey)
	delete(m.runs, runKey)
	return nil
}

func (m *Ledger) Close() error {
	m.Closed = true
	return nil
}

var _ ports.RunLedger = (*Ledger)(nil)

// Publisher is a mock implementation of ports.Publisher.
type Publisher struct {
	PublishFunc func(ctx context.Context, localPath, key string) (string, error)

	Published []string
}

func (m *Publisher) Publish(ctx context.Context, localPath, key string) (string, error) {
	m.Published = append(m.Published, key)
	if m.PublishFunc != nil {
		return m.PublishFunc(ctx, localPath, key)
	}
	return "mock://" + key, nil
}

var _ ports.Publisher = (*Publisher)(nil)

// VideoInspector is a mock implementation of ports.VideoInspector.
type VideoInspector struct {
	InspectFunc func(path string) (ports.VideoInfo, error)
}

func (m *VideoInspector) Inspect(path string) (ports.VideoInfo, error) {
	if m.InspectFunc != nil {
		return m.InspectFunc(path)
	}
	return ports.VideoInfo{}, nil
}

var _ ports.VideoInspector = (*VideoInspector)(nil)

// EventObserver records page events.
type EventObserver struct {
	mu     sync.Mutex
	Events []ObservedEvent
}

// ObservedEvent is one recorded page event.
type ObservedEvent struct {
	Worker int
	Frame  int
	Event  ports.PageEvent
}

func (m *EventObserver) ObservePageEvent(workerID int, frame int, event ports.PageEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Events = append(m.Events, ObservedEvent{Worker: workerID, Frame: frame, Event: event})
}

// Recorded returns a copy of the recorded events.
func (m *EventObserver) Recorded() []ObservedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]ObservedEvent(nil), m.Events...)
}

var _ ports.EventObserver = (*EventObserver)(nil)
