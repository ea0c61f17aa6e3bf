package mocks

import (
	"context"

	"github.com/douhashi/oyakata/internal/verify"
	"github.com/stretchr/testify/mock"
)

// MockVerifyRunner はverify.Runnerのモック
type MockVerifyRunner struct {
	mock.Mock
}

var _ verify.Runner = (*MockVerifyRunner)(nil)

// NewMockVerifyRunner は新しいMockVerifyRunnerを作成する
func NewMockVerifyRunner() *MockVerifyRunner {
	return &MockVerifyRunner{}
}

func (m *MockVerifyRunner) Run(ctx context.Context, projectPath string, opts verify.Options) (*verify.Result, error) {
	args := m.Called(ctx, projectPath, opts)
	if result := args.Get(0); result != nil {
		return result.(*verify.Result), args.Error(1)
	}
	return nil, args.Error(1)
}
