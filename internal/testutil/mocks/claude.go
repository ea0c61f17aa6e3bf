package mocks

import (
	"context"

	"github.com/douhashi/oyakata/internal/claude"
	"github.com/stretchr/testify/mock"
)

// MockAgentClient はAgentClientのモック
type MockAgentClient struct {
	mock.Mock
}

var _ claude.AgentClient = (*MockAgentClient)(nil)

// NewMockAgentClient は新しいMockAgentClientを作成する
func NewMockAgentClient() *MockAgentClient {
	return &MockAgentClient{}
}

func (m *MockAgentClient) Start(ctx context.Context, opts claude.StartOptions) error {
	args := m.Called(ctx, opts)
	return args.Error(0)
}

func (m *MockAgentClient) Send(ctx context.Context, sessionID, text string) error {
	args := m.Called(ctx, sessionID, text)
	return args.Error(0)
}

func (m *MockAgentClient) Events(sessionID string) <-chan claude.StreamEvent {
	args := m.Called(sessionID)
	switch ch := args.Get(0).(type) {
	case <-chan claude.StreamEvent:
		return ch
	case chan claude.StreamEvent:
		return ch
	default:
		return nil
	}
}

func (m *MockAgentClient) Terminate(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}
