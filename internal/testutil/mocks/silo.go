package mocks

import (
	"github.com/douhashi/oyakata/internal/silo"
	"github.com/stretchr/testify/mock"
)

// MockSiloStore はsilo.Storeのモック
type MockSiloStore struct {
	mock.Mock
}

var _ silo.Store = (*MockSiloStore)(nil)

// NewMockSiloStore は新しいMockSiloStoreを作成する
func NewMockSiloStore() *MockSiloStore {
	return &MockSiloStore{}
}

func (m *MockSiloStore) Read(issueID string) (*silo.Progress, error) {
	args := m.Called(issueID)
	if progress := args.Get(0); progress != nil {
		return progress.(*silo.Progress), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockSiloStore) Write(progress *silo.Progress) error {
	args := m.Called(progress)
	return args.Error(0)
}

func (m *MockSiloStore) Delete(issueID string) error {
	args := m.Called(issueID)
	return args.Error(0)
}
