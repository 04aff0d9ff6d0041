package database

import (
	"github.com/stretchr/testify/mock"
)

type MockChatRepository struct {
	mock.Mock
}

func (m *MockChatRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockChatRepository) GetUserByToken(accessToken string) (User, error) {
	args := m.Called(accessToken)
	return args.Get(0).(User), args.Error(1)
}
func (m *MockChatRepository) UpsertUser(params UpsertUserParams) error {
	args := m.Called(params)
	return args.Error(0)
}
func (m *MockChatRepository) ListRooms() ([]RoomActivity, error) {
	args := m.Called()
	return args.Get(0).([]RoomActivity), args.Error(1)
}
func (m *MockChatRepository) GetRoomName(roomId int) (string, error) {
	args := m.Called(roomId)
	return args.String(0), args.Error(1)
}
func (m *MockChatRepository) GetRoomPrompt(roomId int) (string, error) {
	args := m.Called(roomId)
	return args.String(0), args.Error(1)
}
func (m *MockChatRepository) GetRoom(roomId int) (Room, error) {
	args := m.Called(roomId)
	return args.Get(0).(Room), args.Error(1)
}
func (m *MockChatRepository) EnsureRoom(params EnsureRoomParams) (int, error) {
	args := m.Called(params)
	return args.Int(0), args.Error(1)
}
func (m *MockChatRepository) CreateMessage(params CreateMessageParams) error {
	args := m.Called(params)
	return args.Error(0)
}
func (m *MockChatRepository) GetRoomMessages(roomId int) ([]RoomMessage, error) {
	args := m.Called(roomId)
	return args.Get(0).([]RoomMessage), args.Error(1)
}
