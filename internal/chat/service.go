package chat

import (
	"context"
	"fmt"
	"log"

	"github.com/promptrooms/promptrooms/internal/database"
	"github.com/promptrooms/promptrooms/internal/llm"
	"github.com/promptrooms/promptrooms/internal/stats"
)

// BuildRequest produces the fixed two-instruction shape the completion
// provider expects: the room's persona prompt as a system instruction
// followed by the user's message. An empty prompt is passed through as
// an empty instruction, never omitted, so the request shape is
// constant.
func BuildRequest(prompt, userMessage string) []llm.ChatMessage {
	return []llm.ChatMessage{
		{Role: llm.RoleSystem, Content: prompt},
		{Role: llm.RoleUser, Content: userMessage},
	}
}

// Service runs the send-message interaction: persist the user's
// message, obtain a completion, persist the reply.
type Service struct {
	db    database.ChatRepository
	llm   llm.CompletionClient
	log   *log.Logger
	stats stats.StatsProvider
}

func NewService(logger *log.Logger, db database.ChatRepository, client llm.CompletionClient, sp stats.StatsProvider) *Service {
	sp.RegisterMetric(stats.MessagesStored)
	sp.RegisterMetric(stats.RepliesGenerated)
	sp.RegisterMetric(stats.ReplyFailures)

	return &Service{
		db:    db,
		llm:   client,
		log:   logger,
		stats: sp,
	}
}

// SendResult reports the two independently-failing halves of a send.
// The user's message is persisted before the provider is called and
// survives any reply failure; ReplyErr carries that partial outcome.
type SendResult struct {
	Reply    string
	ReplyErr error
}

func (s *Service) GenerateReply(ctx context.Context, prompt, userMessage string) (string, error) {
	resp, err := s.llm.CreateCompletion(ctx, BuildRequest(prompt, userMessage))
	if err != nil {
		return "", err
	}

	return llm.ExtractReply(resp)
}

func (s *Service) SendMessage(ctx context.Context, userId, roomId int, text string) (SendResult, error) {
	prompt, err := s.db.GetRoomPrompt(roomId)
	if err != nil {
		return SendResult{}, err
	}

	err = s.db.CreateMessage(database.CreateMessageParams{
		RoomId:  roomId,
		UserId:  userId,
		Message: text,
	})
	if err != nil {
		return SendResult{}, fmt.Errorf("store message: %w", err)
	}
	s.stats.Incr(stats.MessagesStored)

	reply, err := s.GenerateReply(ctx, prompt, text)
	if err != nil {
		s.log.Printf("generate reply for room %d: %v", roomId, err)
		s.stats.Incr(stats.ReplyFailures)
		return SendResult{ReplyErr: err}, nil
	}

	err = s.db.CreateMessage(database.CreateMessageParams{
		RoomId:  roomId,
		UserId:  database.AssistantUserId,
		Message: reply,
	})
	if err != nil {
		s.log.Printf("store reply for room %d: %v", roomId, err)
		s.stats.Incr(stats.ReplyFailures)
		return SendResult{ReplyErr: fmt.Errorf("store reply: %w", err)}, nil
	}
	s.stats.Incr(stats.MessagesStored)
	s.stats.Incr(stats.RepliesGenerated)

	return SendResult{Reply: reply}, nil
}
