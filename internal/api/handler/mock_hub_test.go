package handler_test

import (
	"chatroom/backend/internal/chathub"
	"chatroom/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockHub struct {
	mock.Mock
}

func (m *MockHub) Register(c chathub.Client) bool {
	return m.Called(c).Bool(0)
}

func (m *MockHub) Unregister(c chathub.Client) {
	m.Called(c)
}

func (m *MockHub) Dispatch(c chathub.Client, evt models.ClientEvent) bool {
	return m.Called(c, evt).Bool(0)
}

func (m *MockHub) Online(roomID string) []string {
	args := m.Called(roomID)
	return args.Get(0).([]string)
}

func (m *MockHub) BroadcastToRoom(roomID string, evt models.ServerEvent) {
	m.Called(roomID, evt)
}

func (m *MockHub) BroadcastToRoomExceptUser(roomID, userID string, evt models.ServerEvent) {
	m.Called(roomID, userID, evt)
}

func (m *MockHub) EvictFromRoom(roomID, userID string) {
	m.Called(roomID, userID)
}

func (m *MockHub) CloseRoom(roomID string) {
	m.Called(roomID)
}

func (m *MockHub) EvictUser(userID string) {
	m.Called(userID)
}
