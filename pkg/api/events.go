package api

import (
	"sync"
)

// Export lifecycle event types, sent on ChannelExports.
const (
	EventTypeExportStarted   = "export_started"
	EventTypeExportCompleted = "export_completed"
	EventTypeExportFailed    = "export_failed"
)

// ExportStartedEvent announces an accepted export request.
type ExportStartedEvent struct {
	RequestID string `json:"requestId"`
	Backend   string `json:"backend"`
	Residues  int    `json:"residues"`
	BarGroups int    `json:"barGroups"`
}

// ExportCompletedEvent reports a rendered script.
type ExportCompletedEvent struct {
	RequestID string   `json:"requestId"`
	Backend   string   `json:"backend"`
	Hash      string   `json:"hash"`
	Lines     int      `json:"lines"`
	Subplots  int      `json:"subplots"`
	Warnings  []string `json:"warnings,omitempty"`
}

// ExportFailedEvent reports an export that produced no script.
type ExportFailedEvent struct {
	RequestID string `json:"requestId"`
	Backend   string `json:"backend,omitempty"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// EventBroadcaster publishes export lifecycle events.
type EventBroadcaster interface {
	ExportStarted(event *ExportStartedEvent) error
	ExportCompleted(event *ExportCompletedEvent) error
	ExportFailed(event *ExportFailedEvent) error
}

// HubEventBroadcaster sends events to hub clients subscribed to
// ChannelExports.
type HubEventBroadcaster struct {
	hub *Hub
}

// NewHubEventBroadcaster creates a broadcaster for hub.
func NewHubEventBroadcaster(hub *Hub) *HubEventBroadcaster {
	return &HubEventBroadcaster{hub: hub}
}

// ExportStarted implements EventBroadcaster.
func (b *HubEventBroadcaster) ExportStarted(event *ExportStartedEvent) error {
	return b.hub.BroadcastToChannel(ChannelExports, newWSMessage(EventTypeExportStarted, event))
}

// ExportCompleted implements EventBroadcaster.
func (b *HubEventBroadcaster) ExportCompleted(event *ExportCompletedEvent) error {
	return b.hub.BroadcastToChannel(ChannelExports, newWSMessage(EventTypeExportCompleted, event))
}

// ExportFailed implements EventBroadcaster.
func (b *HubEventBroadcaster) ExportFailed(event *ExportFailedEvent) error {
	return b.hub.BroadcastToChannel(ChannelExports, newWSMessage(EventTypeExportFailed, event))
}

// MockEventBroadcaster records events for tests.
type MockEventBroadcaster struct {
	mu        sync.Mutex
	Started   []*ExportStartedEvent
	Completed []*ExportCompletedEvent
	Failed    []*ExportFailedEvent
}

// NewMockEventBroadcaster creates an empty MockEventBroadcaster.
func NewMockEventBroadcaster() *MockEventBroadcaster {
	return &MockEventBroadcaster{}
}

// ExportStarted implements EventBroadcaster.
func (m *MockEventBroadcaster) ExportStarted(event *ExportStartedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Started = append(m.Started, event)
	return nil
}

// ExportCompleted implements EventBroadcaster.
func (m *MockEventBroadcaster) ExportCompleted(event *ExportCompletedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Completed = append(m.Completed, event)
	return nil
}

// ExportFailed implements EventBroadcaster.
func (m *MockEventBroadcaster) ExportFailed(event *ExportFailedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Failed = append(m.Failed, event)
	return nil
}

// Counts returns the number of started, completed and failed events.
func (m *MockEventBroadcaster) Counts() (started, completed, failed int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Started), len(m.Completed), len(m.Failed)
}

var (
	_ EventBroadcaster = (*HubEventBroadcaster)(nil)
	_ EventBroadcaster = (*MockEventBroadcaster)(nil)
)
