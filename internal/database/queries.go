package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
)

// uniqueViolation is the Postgres error code raised when an insert
// conflicts with a unique constraint.
const uniqueViolation = pq.ErrorCode("23505")

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func (db *PgChatRepository) GetUserByToken(accessToken string) (User, error) {
	row := db.conn.QueryRow(
		"SELECT id, username, avatar_url, created_at FROM users "+
			"WHERE access_token = $1 LIMIT 1",
		accessToken,
	)

	var user User
	err := row.Scan(
		&user.Id,
		&user.Username,
		&user.AvatarUrl,
		&user.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user by token: %w", err)
	}

	return user, nil
}

func (db *PgChatRepository) UpsertUser(params UpsertUserParams) error {
	_, err := db.conn.Exec(
		"INSERT INTO users (id, username, avatar_url, access_token, created_at) "+
			"VALUES ($1, $2, $3, $4, $5) "+
			"ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username, "+
			"avatar_url = EXCLUDED.avatar_url, access_token = EXCLUDED.access_token",
		params.UserId,
		params.Username,
		params.AvatarUrl,
		params.AccessToken,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}

	return nil
}

func (db *PgChatRepository) ListRooms() ([]RoomActivity, error) {
	rows, err := db.conn.Query(
		"SELECT id, name, last_message_at FROM rooms_with_activity " +
			"ORDER BY last_message_at DESC NULLS LAST",
	)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	var rooms []RoomActivity
	for rows.Next() {
		var room RoomActivity
		if err := rows.Scan(&room.Id, &room.Name, &room.LastMessageAt); err != nil {
			return nil, fmt.Errorf("scan room: %w", err)
		}

		rooms = append(rooms, room)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}

	return rooms, nil
}

func (db *PgChatRepository) GetRoomName(roomId int) (string, error) {
	row := db.conn.QueryRow(
		"SELECT name FROM rooms WHERE id = $1 LIMIT 1",
		roomId,
	)

	var name string
	err := row.Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrRoomNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get room name: %w", err)
	}

	return name, nil
}

func (db *PgChatRepository) GetRoomPrompt(roomId int) (string, error) {
	row := db.conn.QueryRow(
		"SELECT COALESCE(prompt, '') FROM rooms WHERE id = $1 LIMIT 1",
		roomId,
	)

	var prompt string
	err := row.Scan(&prompt)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrRoomNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get room prompt: %w", err)
	}

	return prompt, nil
}

func (db *PgChatRepository) GetRoom(roomId int) (Room, error) {
	row := db.conn.QueryRow(
		"SELECT id, name, COALESCE(prompt, ''), created_at FROM rooms "+
			"WHERE id = $1 LIMIT 1",
		roomId,
	)

	var room Room
	err := row.Scan(
		&room.Id,
		&room.Name,
		&room.Prompt,
		&room.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Room{}, ErrRoomNotFound
	}
	if err != nil {
		return Room{}, fmt.Errorf("get room: %w", err)
	}

	return room, nil
}

// EnsureRoom creates the named room if it does not already exist and
// returns the id of whichever row survives. The insert and the read
// are deliberately separate statements: under concurrent callers for
// the same name exactly one insert wins the unique constraint and
// every caller converges on the same row.
func (db *PgChatRepository) EnsureRoom(params EnsureRoomParams) (int, error) {
	_, err := db.conn.Exec(
		"INSERT INTO rooms (name, prompt, created_at) VALUES ($1, $2, $3)",
		params.Name,
		params.Prompt,
		time.Now().UTC(),
	)
	if err != nil && !isUniqueViolation(err) {
		return 0, fmt.Errorf("insert room: %w", err)
	}

	// The read is retried once: a competing insert may commit in the
	// window between our losing insert and the first read.
	var id int
	for attempt := 0; attempt < 2; attempt++ {
		err = db.conn.QueryRow(
			"SELECT id FROM rooms WHERE name = $1 LIMIT 1",
			params.Name,
		).Scan(&id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("read room: %w", err)
		}
	}

	return 0, ErrRoomNotFound
}

func (db *PgChatRepository) CreateMessage(params CreateMessageParams) error {
	_, err := db.conn.Exec(
		`INSERT INTO messages (message, "from", room, created_at) `+
			"VALUES ($1, $2, $3, $4)",
		params.Message,
		params.UserId,
		params.RoomId,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}

	return nil
}

func (db *PgChatRepository) GetRoomMessages(roomId int) ([]RoomMessage, error) {
	rows, err := db.conn.Query(
		`SELECT m.message, u.username, u.avatar_url, m.created_at `+
			`FROM messages m JOIN users u ON m."from" = u.id `+
			"WHERE m.room = $1 ORDER BY m.created_at ASC",
		roomId,
	)
	if err != nil {
		return nil, fmt.Errorf("get room messages: %w", err)
	}
	defer rows.Close()

	var messages []RoomMessage
	for rows.Next() {
		var msg RoomMessage
		err := rows.Scan(
			&msg.Message,
			&msg.Username,
			&msg.AvatarUrl,
			&msg.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}

		messages = append(messages, msg)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("get room messages: %w", err)
	}

	return messages, nil
}
