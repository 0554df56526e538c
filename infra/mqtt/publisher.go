package mqtt

import (
	"fmt"
	"sync"
	"time"

	"github.com/kilianp07/loadplan/core/model"
	coremqtt "github.com/kilianp07/loadplan/core/mqtt"
)

// Publisher mirrors the core mqtt.Publisher interface.
type Publisher = coremqtt.Publisher

// MockPublisher is an in-memory publisher used in tests and dry runs.
type MockPublisher struct {
	Plans      []model.Plan
	FailIDs    map[string]bool
	AckResults map[string]bool
	mu         sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{
		FailIDs:    make(map[string]bool),
		AckResults: make(map[string]bool),
	}
}

// PublishPlan records the plan or returns an error if its vehicle is
// configured to fail.
func (m *MockPublisher) PublishPlan(plan model.Plan) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailIDs[plan.VehicleID] {
		return "", fmt.Errorf("publish failed")
	}
	m.Plans = append(m.Plans, plan)
	msgID := fmt.Sprintf("msg-%s", plan.ID)
	m.AckResults[msgID] = true
	return msgID, nil
}

// WaitForAck simulates an immediate acknowledgment based on the stored result.
func (m *MockPublisher) WaitForAck(messageID string, timeout time.Duration) (bool, error) {
	m.mu.Lock()
	ok, exists := m.AckResults[messageID]
	m.mu.Unlock()
	if !exists {
		return false, fmt.Errorf("%s: %w", messageID, coremqtt.ErrUnknownMessage)
	}
	return ok, nil
}

// Published returns a copy of the recorded plans.
func (m *MockPublisher) Published() []model.Plan {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.Plan(nil), m.Plans...)
}
