package database

import (
	"database/sql"
	"time"
)

type User struct {
	Id          int
	Username    string
	AvatarUrl   string
	AccessToken string
	CreatedAt   time.Time
}

type Room struct {
	Id        int
	Name      string
	Prompt    string
	CreatedAt time.Time
}

// RoomActivity is a row of the rooms_with_activity view.
// LastMessageAt is null for rooms with no messages.
type RoomActivity struct {
	Id            int
	Name          string
	LastMessageAt sql.NullTime
}

type Message struct {
	Id        int
	RoomId    int
	UserId    int
	Message   string
	CreatedAt time.Time
}

// RoomMessage is a message with its author's display identity joined in.
type RoomMessage struct {
	Message   string
	Username  string
	AvatarUrl string
	CreatedAt time.Time
}

type UpsertUserParams struct {
	UserId      int
	Username    string
	AvatarUrl   string
	AccessToken string
}

type EnsureRoomParams struct {
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
}

type CreateMessageParams struct {
	RoomId  int
	UserId  int
	Message string
}
