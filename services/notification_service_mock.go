package services

import (
	"sync"
)

// MockNotificationService is a mock implementation of NotificationService
// for testing. It records every event it receives and can be told to fail.
type MockNotificationService struct {
	acceptedEvents []BidAcceptedEvent
	failWith       error
	mu             sync.Mutex
}

// NewMockNotificationService creates a new mock notification service
func NewMockNotificationService() *MockNotificationService {
	return &MockNotificationService{}
}

// SetAsMockForTesting sets this mock as the global notification service instance
func (m *MockNotificationService) SetAsMockForTesting() {
	SetNotificationService(m)
}

// FailWith makes subsequent notifications return err
func (m *MockNotificationService) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWith = err
}

// NotifyBidAccepted records the event
func (m *MockNotificationService) NotifyBidAccepted(event BidAcceptedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWith != nil {
		return m.failWith
	}
	m.acceptedEvents = append(m.acceptedEvents, event)
	return nil
}

// AcceptedEvents returns a copy of the recorded BidAccepted events
func (m *MockNotificationService) AcceptedEvents() []BidAcceptedEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	events := make([]BidAcceptedEvent, len(m.acceptedEvents))
	copy(events, m.acceptedEvents)
	return events
}
