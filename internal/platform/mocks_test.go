package platform

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockPreparer implements Preparer for testing
type MockPreparer struct {
	mock.Mock
	name string
}

func newMockPreparer(name string) *MockPreparer {
	return &MockPreparer{name: name}
}

func (m *MockPreparer) Name() string {
	return m.name
}

func (m *MockPreparer) Prepare(ctx context.Context, p *Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPreparer) Clean(ctx context.Context, p *Project) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}
