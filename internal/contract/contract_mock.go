package contract

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
)

// MockFileReader is a mock implementation of FileReader.
type MockFileReader struct {
	mock.Mock
}

var _ FileReader = &MockFileReader{} // Compile-time check

// ReadFile mocks the ReadFile method.
func (m *MockFileReader) ReadFile(ctx context.Context, path string) (string, error) {
	args := m.Called(ctx, path)
	return args.String(0), args.Error(1)
}

// MockHistoryClient is a mock implementation of HistoryClient.
type MockHistoryClient struct {
	mock.Mock
}

var _ HistoryClient = &MockHistoryClient{} // Compile-time check

// CommitHistory mocks the CommitHistory method.
func (m *MockHistoryClient) CommitHistory(ctx context.Context, repoPath string, since time.Time) ([]CommitInfo, error) {
	args := m.Called(ctx, repoPath, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]CommitInfo), args.Error(1)
}
