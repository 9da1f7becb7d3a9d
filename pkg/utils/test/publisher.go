package testutils

import (
	"context"
	"sync"

	"github.com/papercomputeco/lurker/pkg/eventstream"
)

// MockPublisher is a test publisher that records published events.
type MockPublisher struct {
	// FailPublish causes every Publish call to fail.
	FailPublish bool

	mu     sync.Mutex
	events []eventstream.Event
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(_ context.Context, event eventstream.Event) error {
	if m.FailPublish {
		return eventstream.ErrPublish
	}

	m.mu.Lock()
	m.events = append(m.events, event)
	m.mu.Unlock()
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}

// Events returns the events published so far.
func (m *MockPublisher) Events() []eventstream.Event {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]eventstream.Event, len(m.events))
	copy(out, m.events)
	return out
}
