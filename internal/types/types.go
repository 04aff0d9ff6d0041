package types

import (
	"time"
)

type User struct {
	Id        int       `json:"id"`
	Username  string    `json:"username"`
	AvatarUrl string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
}

type Room struct {
	Id            int        `json:"id"`
	Name          string     `json:"name"`
	Prompt        string     `json:"prompt,omitempty"`
	LastMessageAt *time.Time `json:"last_message_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at,omitempty"`
}

type Message struct {
	RoomId    int       `json:"room_id,omitempty"`
	Message   string    `json:"message"`
	From      User      `json:"from"`
	CreatedAt time.Time `json:"created_at"`
}
