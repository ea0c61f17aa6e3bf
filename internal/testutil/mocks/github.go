package mocks

import (
	"context"

	"github.com/douhashi/oyakata/internal/github"
	"github.com/stretchr/testify/mock"
)

// MockIssueService はIssueServiceのモック
type MockIssueService struct {
	mock.Mock
}

var _ github.IssueService = (*MockIssueService)(nil)

// NewMockIssueService は新しいMockIssueServiceを作成する
func NewMockIssueService() *MockIssueService {
	return &MockIssueService{}
}

func (m *MockIssueService) List(ctx context.Context) ([]*github.Issue, error) {
	args := m.Called(ctx)
	if issues := args.Get(0); issues != nil {
		return issues.([]*github.Issue), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIssueService) Get(ctx context.Context, id string) (*github.Issue, error) {
	args := m.Called(ctx, id)
	if issue := args.Get(0); issue != nil {
		return issue.(*github.Issue), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockIssueService) Create(ctx context.Context, title, issueType, priority, description string) (string, error) {
	args := m.Called(ctx, title, issueType, priority, description)
	return args.String(0), args.Error(1)
}

func (m *MockIssueService) Update(ctx context.Context, id string, update github.IssueUpdate) error {
	args := m.Called(ctx, id, update)
	return args.Error(0)
}

func (m *MockIssueService) Comment(ctx context.Context, id string, body string) error {
	args := m.Called(ctx, id, body)
	return args.Error(0)
}

func (m *MockIssueService) Close(ctx context.Context, id string, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}
