package mocks

import (
	"context"

	"github.com/douhashi/oyakata/internal/git"
	"github.com/stretchr/testify/mock"
)

// MockCommitter はgit.Committerのモック
type MockCommitter struct {
	mock.Mock
}

var _ git.Committer = (*MockCommitter)(nil)

// NewMockCommitter は新しいMockCommitterを作成する
func NewMockCommitter() *MockCommitter {
	return &MockCommitter{}
}

func (m *MockCommitter) HasChanges(ctx context.Context, repoPath string) (bool, error) {
	args := m.Called(ctx, repoPath)
	return args.Bool(0), args.Error(1)
}

func (m *MockCommitter) CommitAll(ctx context.Context, repoPath, message string) (string, error) {
	args := m.Called(ctx, repoPath, message)
	return args.String(0), args.Error(1)
}
