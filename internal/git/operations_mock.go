package git

import (
	"context"
	"fmt"
)

// MockGitOps is a mock implementation of Operations for testing.
type MockGitOps struct {
	CloneError error
	Commit     string

	// ClonedURL and ClonedDest record the last Clone call.
	ClonedURL  string
	ClonedRef  string
	ClonedDest string
}

// NewMockGitOps creates a mock with sensible defaults.
func NewMockGitOps() *MockGitOps {
	return &MockGitOps{
		Commit: "abc1234def5678",
	}
}

func (m *MockGitOps) Clone(ctx context.Context, url, ref, dest string) error {
	if m.CloneError != nil {
		return m.CloneError
	}
	m.ClonedURL = url
	m.ClonedRef = ref
	m.ClonedDest = dest
	return nil
}

func (m *MockGitOps) HeadCommit(repoPath string) string {
	return m.Commit
}

// String returns a human-readable representation of the mock state.
func (m *MockGitOps) String() string {
	return fmt.Sprintf("MockGitOps{url=%s, ref=%s, commit=%s}", m.ClonedURL, m.ClonedRef, m.Commit)
}
