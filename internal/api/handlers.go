package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/promptrooms/promptrooms/internal/database"
	"github.com/promptrooms/promptrooms/internal/stats"
	"github.com/promptrooms/promptrooms/internal/types"
)

type UpdateAccountRequest struct {
	Username  string `json:"username"`
	AvatarUrl string `json:"avatar_url"`
}

type EnsureRoomRequest struct {
	Name   string `json:"name"`
	Prompt string `json:"prompt"`
}

type SendMessageRequest struct {
	RoomId  int    `json:"room_id"`
	Message string `json:"message"`
}

type SendMessageResponse struct {
	RoomId     int    `json:"room_id"`
	Message    string `json:"message"`
	Reply      string `json:"reply,omitempty"`
	ReplyError string `json:"reply_error,omitempty"`
}

func (s *PromptRoomsApp) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("json encode: %v", err)
	}
}

func (s *PromptRoomsApp) healthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.db.Ping(); err != nil {
		s.log.Println("health check:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func (s *PromptRoomsApp) session(w http.ResponseWriter, r *http.Request) {
	user, err := s.db.GetUserByToken(bearerToken(r))
	if err != nil {
		var errResp *ApiError
		if errors.Is(err, database.ErrUserNotFound) {
			errResp = NewUnauthorizedError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, types.User{
		Id:        user.Id,
		Username:  user.Username,
		AvatarUrl: user.AvatarUrl,
		CreatedAt: user.CreatedAt,
	})
}

// updateAccount refreshes the acting user's display fields. The
// credential itself is re-written unchanged: the upsert is keyed on
// user id and covers the full login lifecycle.
func (s *PromptRoomsApp) updateAccount(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req UpdateAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Username == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	err := s.db.UpsertUser(database.UpsertUserParams{
		UserId:      userId,
		Username:    req.Username,
		AvatarUrl:   req.AvatarUrl,
		AccessToken: bearerToken(r),
	})
	if err != nil {
		s.log.Println("upsert user:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, types.User{
		Id:        userId,
		Username:  req.Username,
		AvatarUrl: req.AvatarUrl,
	})
}

func (s *PromptRoomsApp) listRooms(w http.ResponseWriter, r *http.Request) {
	dbRooms, err := s.db.ListRooms()
	if err != nil {
		s.log.Println("list rooms:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	rooms := make([]types.Room, 0, len(dbRooms))
	for _, dbRoom := range dbRooms {
		room := types.Room{
			Id:   dbRoom.Id,
			Name: dbRoom.Name,
		}
		if dbRoom.LastMessageAt.Valid {
			t := dbRoom.LastMessageAt.Time
			room.LastMessageAt = &t
		}

		rooms = append(rooms, room)
	}

	s.writeJson(w, http.StatusOK, rooms)
}

func (s *PromptRoomsApp) ensureRoom(w http.ResponseWriter, r *http.Request) {
	var req EnsureRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Name == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	roomId, err := s.db.EnsureRoom(database.EnsureRoomParams{
		Name:   req.Name,
		Prompt: req.Prompt,
	})
	if err != nil {
		s.log.Println("ensure room:", err)
		var errResp *ApiError
		if errors.Is(err, database.ErrRoomNotFound) {
			errResp = NewRoomUnavailableError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}
	s.stats.Incr(stats.RoomsEnsured)

	room, err := s.db.GetRoom(roomId)
	if err != nil {
		s.log.Println("get room:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusCreated, types.Room{
		Id:        room.Id,
		Name:      room.Name,
		Prompt:    room.Prompt,
		CreatedAt: room.CreatedAt,
	})
}

func (s *PromptRoomsApp) getMessages(w http.ResponseWriter, r *http.Request) {
	roomIdStr := r.URL.Query().Get("room_id")
	if roomIdStr == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	roomId, err := strconv.Atoi(roomIdStr)
	if err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if _, err := s.db.GetRoomName(roomId); err != nil {
		var errResp *ApiError
		if errors.Is(err, database.ErrRoomNotFound) {
			errResp = NewRoomUnavailableError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	dbMessages, err := s.db.GetRoomMessages(roomId)
	if err != nil {
		s.log.Println("get room messages:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	messages := make([]types.Message, 0, len(dbMessages))
	for _, msg := range dbMessages {
		messages = append(messages, types.Message{
			RoomId:  roomId,
			Message: msg.Message,
			From: types.User{
				Username:  msg.Username,
				AvatarUrl: msg.AvatarUrl,
			},
			CreatedAt: msg.CreatedAt,
		})
	}

	s.writeJson(w, http.StatusOK, messages)
}

func (s *PromptRoomsApp) sendMessage(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var req SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if req.Message == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	res, err := s.chat.SendMessage(r.Context(), userId, req.RoomId, req.Message)
	if err != nil {
		s.log.Println("send message:", err)
		var errResp *ApiError
		if errors.Is(err, database.ErrRoomNotFound) {
			errResp = NewRoomUnavailableError()
		} else {
			errResp = NewInternalServerError(err)
		}
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	resp := SendMessageResponse{
		RoomId:  req.RoomId,
		Message: req.Message,
		Reply:   res.Reply,
	}

	// The user's message was persisted even if the reply step failed;
	// report the partial outcome rather than an error.
	if res.ReplyErr != nil {
		resp.ReplyError = "assistant reply unavailable"
		s.writeJson(w, http.StatusAccepted, resp)
		return
	}

	s.writeJson(w, http.StatusCreated, resp)
}
