package mocks

import (
	"image"
	"sync"

	"github.com/user/framecast/pkg/ports"
)

// DebugSink is a mock implementation of ports.DebugSink.
type DebugSink struct {
	mu sync.RWMutex

	enabled bool

	RunJSON      []byte
	PageEvents   [][]byte
	ContactSheet image.Image
}

// NewDebugSink creates a new mock DebugSink.
func NewDebugSink(enabled bool) *DebugSink {
	return &DebugSink{enabled: enabled}
}

func (m *DebugSink) Enabled() bool {
	return m.enabled
}

func (m *DebugSink) SaveRunJSON(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RunJSON = data
	return nil
}

func (m *DebugSink) AppendPageEvent(line []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PageEvents = append(m.PageEvents, append([]byte(nil), line...))
	return nil
}

func (m *DebugSink) SaveContactSheet(img image.Image) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ContactSheet = img
	return nil
}

// Events returns the recorded page event lines.
func (m *DebugSink) Events() [][]byte {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([][]byte(nil), m.PageEvents...)
}

var _ ports.DebugSink = (*DebugSink)(nil)
