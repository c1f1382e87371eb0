package mocks

import (
	"context"

	"launchpad/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockIdentityService struct {
	mock.Mock
}

func (m *MockIdentityService) SyncUser(ctx context.Context, userID, email string) (*model.User, error) {
	args := m.Called(ctx, userID, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockIdentityService) DeleteUser(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
