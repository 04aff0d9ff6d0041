package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/promptrooms/promptrooms/internal/database"
	"github.com/promptrooms/promptrooms/internal/llm"
	"github.com/promptrooms/promptrooms/internal/stats"
	"github.com/promptrooms/promptrooms/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newTestService(t *testing.T, db *database.MockChatRepository, client *llm.MockCompletionClient) (*Service, *stats.MockStatsUpdater) {
	mockStats := &stats.MockStatsUpdater{}
	mockStats.On("RegisterMetric", mock.Anything).Return()
	mockStats.On("Incr", mock.Anything).Return().Maybe()

	return NewService(testutil.TestLogger(t), db, client, mockStats), mockStats
}

func TestBuildRequest(t *testing.T) {
	tcases := []struct {
		name    string
		prompt  string
		message string
	}{
		{
			name:    "prompt and message",
			prompt:  "You are a helpful assistant.",
			message: "hi",
		},
		{
			name:    "empty prompt is passed through, not omitted",
			prompt:  "",
			message: "hi",
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			msgs := BuildRequest(tc.prompt, tc.message)

			assert.Len(t, msgs, 2, "expected exactly two instructions")
			assert.Equal(t, llm.RoleSystem, msgs[0].Role)
			assert.Equal(t, tc.prompt, msgs[0].Content, "expected prompt to be forwarded verbatim")
			assert.Equal(t, llm.RoleUser, msgs[1].Role)
			assert.Equal(t, tc.message, msgs[1].Content)
		})
	}
}

func TestGenerateReply(t *testing.T) {
	tcases := []struct {
		name      string
		mockResp  llm.CompletionResponse
		mockErr   error
		expected  string
		expectErr error
	}{
		{
			name: "successful reply",
			mockResp: llm.CompletionResponse{
				Choices: []llm.Choice{
					{Message: llm.ChatMessage{Role: "assistant", Content: "hello!"}},
				},
			},
			expected: "hello!",
		},
		{
			name:      "provider failure",
			mockErr:   llm.ErrProvider,
			expectErr: llm.ErrProvider,
		},
		{
			name:      "zero choices",
			mockResp:  llm.CompletionResponse{},
			expectErr: llm.ErrEmptyCompletion,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			mockClient := &llm.MockCompletionClient{}
			defer mockClient.AssertExpectations(t)
			mockClient.On("CreateCompletion", mock.Anything, BuildRequest("prompt", "hi")).
				Return(tc.mockResp, tc.mockErr).Once()

			svc, _ := newTestService(t, &database.MockChatRepository{}, mockClient)

			reply, err := svc.GenerateReply(context.Background(), "prompt", "hi")
			if tc.expectErr != nil {
				assert.ErrorIs(t, err, tc.expectErr)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tc.expected, reply)
		})
	}
}

func TestSendMessage(t *testing.T) {
	const (
		roomId = 7
		userId = 42
		prompt = "You are a helpful assistant."
	)

	t.Run("successful send persists both messages", func(t *testing.T) {
		mockRepo := &database.MockChatRepository{}
		defer mockRepo.AssertExpectations(t)
		mockClient := &llm.MockCompletionClient{}
		defer mockClient.AssertExpectations(t)

		mockRepo.On("GetRoomPrompt", roomId).Return(prompt, nil).Once()
		mockRepo.On("CreateMessage", database.CreateMessageParams{
			RoomId:  roomId,
			UserId:  userId,
			Message: "hi",
		}).Return(nil).Once()
		mockClient.On("CreateCompletion", mock.Anything, BuildRequest(prompt, "hi")).
			Return(llm.CompletionResponse{
				Choices: []llm.Choice{
					{Message: llm.ChatMessage{Role: "assistant", Content: "hello!"}},
				},
			}, nil).Once()
		mockRepo.On("CreateMessage", database.CreateMessageParams{
			RoomId:  roomId,
			UserId:  database.AssistantUserId,
			Message: "hello!",
		}).Return(nil).Once()

		svc, _ := newTestService(t, mockRepo, mockClient)

		res, err := svc.SendMessage(context.Background(), userId, roomId, "hi")
		assert.NoError(t, err)
		assert.NoError(t, res.ReplyErr)
		assert.Equal(t, "hello!", res.Reply)
	})

	t.Run("unknown room aborts before persisting", func(t *testing.T) {
		mockRepo := &database.MockChatRepository{}
		defer mockRepo.AssertExpectations(t)

		mockRepo.On("GetRoomPrompt", roomId).Return("", database.ErrRoomNotFound).Once()

		svc, _ := newTestService(t, mockRepo, &llm.MockCompletionClient{})

		_, err := svc.SendMessage(context.Background(), userId, roomId, "hi")
		assert.ErrorIs(t, err, database.ErrRoomNotFound)
		mockRepo.AssertNotCalled(t, "CreateMessage", mock.Anything)
	})

	t.Run("provider failure keeps the user message", func(t *testing.T) {
		mockRepo := &database.MockChatRepository{}
		defer mockRepo.AssertExpectations(t)
		mockClient := &llm.MockCompletionClient{}
		defer mockClient.AssertExpectations(t)

		mockRepo.On("GetRoomPrompt", roomId).Return(prompt, nil).Once()
		mockRepo.On("CreateMessage", database.CreateMessageParams{
			RoomId:  roomId,
			UserId:  userId,
			Message: "hi",
		}).Return(nil).Once()
		mockClient.On("CreateCompletion", mock.Anything, BuildRequest(prompt, "hi")).
			Return(llm.CompletionResponse{}, llm.ErrProvider).Once()

		svc, _ := newTestService(t, mockRepo, mockClient)

		res, err := svc.SendMessage(context.Background(), userId, roomId, "hi")
		assert.NoError(t, err, "a failed reply is a partial outcome, not a send failure")
		assert.ErrorIs(t, res.ReplyErr, llm.ErrProvider)
		assert.Empty(t, res.Reply)
	})

	t.Run("empty completion is a distinct reply failure", func(t *testing.T) {
		mockRepo := &database.MockChatRepository{}
		defer mockRepo.AssertExpectations(t)
		mockClient := &llm.MockCompletionClient{}
		defer mockClient.AssertExpectations(t)

		mockRepo.On("GetRoomPrompt", roomId).Return(prompt, nil).Once()
		mockRepo.On("CreateMessage", mock.Anything).Return(nil).Once()
		mockClient.On("CreateCompletion", mock.Anything, mock.Anything).
			Return(llm.CompletionResponse{}, nil).Once()

		svc, _ := newTestService(t, mockRepo, mockClient)

		res, err := svc.SendMessage(context.Background(), userId, roomId, "hi")
		assert.NoError(t, err)
		assert.ErrorIs(t, res.ReplyErr, llm.ErrEmptyCompletion)
	})

	t.Run("failing to store the reply is a reply failure", func(t *testing.T) {
		mockRepo := &database.MockChatRepository{}
		defer mockRepo.AssertExpectations(t)
		mockClient := &llm.MockCompletionClient{}
		defer mockClient.AssertExpectations(t)

		dbErr := errors.New("connection reset")
		mockRepo.On("GetRoomPrompt", roomId).Return(prompt, nil).Once()
		mockRepo.On("CreateMessage", database.CreateMessageParams{
			RoomId:  roomId,
			UserId:  userId,
			Message: "hi",
		}).Return(nil).Once()
		mockClient.On("CreateCompletion", mock.Anything, mock.Anything).
			Return(llm.CompletionResponse{
				Choices: []llm.Choice{
					{Message: llm.ChatMessage{Role: "assistant", Content: "hello!"}},
				},
			}, nil).Once()
		mockRepo.On("CreateMessage", database.CreateMessageParams{
			RoomId:  roomId,
			UserId:  database.AssistantUserId,
			Message: "hello!",
		}).Return(dbErr).Once()

		svc, _ := newTestService(t, mockRepo, mockClient)

		res, err := svc.SendMessage(context.Background(), userId, roomId, "hi")
		assert.NoError(t, err)
		assert.ErrorIs(t, res.ReplyErr, dbErr)
	})

	t.Run("failing to store the user message fails the send", func(t *testing.T) {
		mockRepo := &database.MockChatRepository{}
		defer mockRepo.AssertExpectations(t)

		dbErr := errors.New("connection reset")
		mockRepo.On("GetRoomPrompt", roomId).Return(prompt, nil).Once()
		mockRepo.On("CreateMessage", mock.Anything).Return(dbErr).Once()

		svc, _ := newTestService(t, mockRepo, &llm.MockCompletionClient{})

		_, err := svc.SendMessage(context.Background(), userId, roomId, "hi")
		assert.ErrorIs(t, err, dbErr)
	})
}
