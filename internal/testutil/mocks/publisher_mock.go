package mocks

import (
	"context"
	"sync"

	"github.com/AchilleasB/parrainage/matching-service/internal/core/domain"
	"github.com/AchilleasB/parrainage/matching-service/internal/core/ports"
)

// MockNotificationPublisher implements ports.NotificationPublisher so the
// outbox relay can be tested without RabbitMQ.
type MockNotificationPublisher struct {
	mu sync.RWMutex

	PublishedNotifications []domain.Notification

	PublishError error

	PublishCallCount int
}

var _ ports.NotificationPublisher = (*MockNotificationPublisher)(nil)

func NewMockNotificationPublisher() *MockNotificationPublisher {
	return &MockNotificationPublisher{
		PublishedNotifications: make([]domain.Notification, 0),
	}
}

func (m *MockNotificationPublisher) PublishNotification(ctx context.Context, n domain.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.PublishCallCount++

	if m.PublishError != nil {
		return m.PublishError
	}

	m.PublishedNotifications = append(m.PublishedNotifications, n)
	return nil
}

func (m *MockNotificationPublisher) GetPublished() []domain.Notification {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.Notification, len(m.PublishedNotifications))
	copy(out, m.PublishedNotifications)
	return out
}

func (m *MockNotificationPublisher) GetPublishCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.PublishCallCount
}
