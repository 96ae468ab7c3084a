package mocks

import "context"

// MockUserDirectory implements service.UserDirectory for testing
type MockUserDirectory struct {
	// UserExistsFn allows test cases to mock the UserExists behavior
	UserExistsFn func(ctx context.Context, userName string) (bool, error)

	// Known is consulted when UserExistsFn is nil
	Known map[string]bool
}

// NewMockUserDirectory creates a directory that knows userNames.
func NewMockUserDirectory(userNames ...string) *MockUserDirectory {
	known := make(map[string]bool, len(userNames))
	for _, name := range userNames {
		known[name] = true
	}
	return &MockUserDirectory{Known: known}
}

// UserExists implements the service.UserDirectory interface
func (m *MockUserDirectory) UserExists(ctx context.Context, userName string) (bool, error) {
	if m.UserExistsFn != nil {
		return m.UserExistsFn(ctx, userName)
	}
	return m.Known[userName], nil
}
