package llm

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockCompletionClient struct {
	mock.Mock
}

func (m *MockCompletionClient) CreateCompletion(ctx context.Context, messages []ChatMessage) (CompletionResponse, error) {
	args := m.Called(ctx, messages)
	return args.Get(0).(CompletionResponse), args.Error(1)
}
