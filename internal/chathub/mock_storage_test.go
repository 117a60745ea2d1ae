package chathub_test

import (
	"chatroom/backend/internal/models"
	"context"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) GetRoomMembership(ctx context.Context, roomID string) ([]models.RoomUser, error) {
	args := m.Called(ctx, roomID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.RoomUser), args.Error(1)
}

func (m *MockStorage) GetUsername(ctx context.Context, userID string) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) GetMessageRoomID(ctx context.Context, messageID string) (string, error) {
	args := m.Called(ctx, messageID)
	return args.String(0), args.Error(1)
}
