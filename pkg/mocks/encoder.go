package mocks

import (
	"context"
	"sync"

	"github.com/user/framecast/pkg/ports"
)

// EncoderProcess is a mock implementation of ports.EncoderProcess.
type EncoderProcess struct {
	VersionFunc func(ctx context.Context) (string, error)
	RunFunc     func(ctx context.Context, args []string) (ports.ProcessResult, error)

	mu sync.Mutex

	// Recorded calls for verification
	VersionCalls int
	RunCalls     [][]string
}

func (m *EncoderProcess) Version(ctx context.Context) (string, error) {
	m.mu.Lock()
	m.VersionCalls++
	m.mu.Unlock()
	if m.VersionFunc != nil {
		return m.VersionFunc(ctx)
	}
	return "ffmpeg version 6.1-mock", nil
}

func (m *EncoderProcess) Run(ctx context.Context, args []string) (ports.ProcessResult, error) {
	m.mu.Lock()
	m.RunCalls = append(m.RunCalls, append([]string(nil), args...))
	m.mu.Unlock()
	if m.RunFunc != nil {
		return m.RunFunc(ctx, args)
	}
	return ports.ProcessResult{}, nil
}

// Runs returns the number of Run calls.
func (m *EncoderProcess) Runs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.RunCalls)
}

var _ ports.EncoderProcess = (*EncoderProcess)(nil)
