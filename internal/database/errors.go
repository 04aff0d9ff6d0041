package database

import "errors"

var (
	// ErrUserNotFound is returned when no user matches the presented
	// access token.
	ErrUserNotFound = errors.New("user not found")
	// ErrRoomNotFound is returned when a room lookup by id or name
	// finds no row.
	ErrRoomNotFound = errors.New("room not found")
)
