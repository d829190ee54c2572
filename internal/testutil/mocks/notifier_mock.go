package mocks

import (
	"context"
	"sync"

	"github.com/AchilleasB/parrainage/matching-service/internal/core/domain"
	"github.com/AchilleasB/parrainage/matching-service/internal/core/ports"
)

// MockNotifier implements ports.Notifier for testing.
type MockNotifier struct {
	mu sync.RWMutex

	// Track sent notifications for verification
	Notifications []domain.Notification

	// Error injection
	NotifyError error

	NotifyCallCount int
}

var _ ports.Notifier = (*MockNotifier)(nil)

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{
		Notifications: make([]domain.Notification, 0),
	}
}

func (m *MockNotifier) Notify(ctx context.Context, n domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.NotifyCallCount++

	if m.NotifyError != nil {
		return m.NotifyError
	}

	m.Notifications = append(m.Notifications, n)
	return nil
}

// GetNotifications returns a copy of the delivered notifications.
func (m *MockNotifier) GetNotifications() []domain.Notification {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Notification, len(m.Notifications))
	copy(out, m.Notifications)
	return out
}

func (m *MockNotifier) GetNotifyCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.NotifyCallCount
}

func (m *MockNotifier) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Notifications = make([]domain.Notification, 0)
	m.NotifyError = nil
	m.NotifyCallCount = 0
}
