package database

// AssistantUserId is the reserved identity that authors generated
// replies. The row is seeded by the initial migration alongside the
// Lobby room; external identities are always positive.
const AssistantUserId = 0

type ChatRepository interface {
	Ping() error
	GetUserByToken(accessToken string) (User, error)
	UpsertUser(params UpsertUserParams) error
	ListRooms() ([]RoomActivity, error)
	GetRoomName(roomId int) (string, error)
	GetRoomPrompt(roomId int) (string, error)
	GetRoom(roomId int) (Room, error)
	EnsureRoom(params EnsureRoomParams) (int, error)
	CreateMessage(params CreateMessageParams) error
	GetRoomMessages(roomId int) ([]RoomMessage, error)
}
