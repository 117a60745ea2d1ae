package chathub_test

import (
	"chatroom/backend/internal/models"
	"sync"
)

// MockClient records every event the hub delivers to it.
type MockClient struct {
	connID string
	userID string

	mu     sync.Mutex
	events []models.ServerEvent
	closed bool
}

func newMockClient(connID, userID string) *MockClient {
	return &MockClient{connID: connID, userID: userID}
}

func (c *MockClient) GetConnID() string { return c.connID }
func (c *MockClient) GetUserID() string { return c.userID }

func (c *MockClient) Deliver(evt models.ServerEvent) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	c.events = append(c.events, evt)
	return true
}

func (c *MockClient) Run() {
	// Not needed for testing
}

func (c *MockClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

func (c *MockClient) IsClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func (c *MockClient) Events() []models.ServerEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.ServerEvent(nil), c.events...)
}

// Named returns the received events called name, in arrival order.
func (c *MockClient) Named(name string) []models.ServerEvent {
	var out []models.ServerEvent
	for _, evt := range c.Events() {
		if evt.Event == name {
			out = append(out, evt)
		}
	}
	return out
}

// LastUserList returns the payload of the most recent userList, or nil if none arrived.
func (c *MockClient) LastUserList() []string {
	lists := c.Named(models.EventUserList)
	if len(lists) == 0 {
		return nil
	}
	return lists[len(lists)-1].Data.([]string)
}
