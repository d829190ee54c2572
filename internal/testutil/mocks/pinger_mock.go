package mocks

import (
	"context"
	"sync"
)

// MockPinger stands in for a database or cache health probe.
type MockPinger struct {
	mu        sync.Mutex
	err       error
	PingCount int
}

func NewMockPinger(err error) *MockPinger {
	return &MockPinger{err: err}
}

func (m *MockPinger) PingContext(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PingCount++
	return m.err
}

func (m *MockPinger) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}
