package mocks

import (
	"context"

	"filevault/internal/model"
	"filevault/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockShareService struct {
	mock.Mock
}

func (m *MockShareService) Share(ctx context.Context, actorID, fileID, granteeEmail string, permission model.Permission) (*model.ShareGrant, error) {
	args := m.Called(ctx, actorID, fileID, granteeEmail, permission)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ShareGrant), args.Error(1)
}

func (m *MockShareService) Unshare(ctx context.Context, actorID, fileID, granteeID string) error {
	args := m.Called(ctx, actorID, fileID, granteeID)
	return args.Error(0)
}

func (m *MockShareService) RemoveShared(ctx context.Context, actorID, fileID string) error {
	args := m.Called(ctx, actorID, fileID)
	return args.Error(0)
}

func (m *MockShareService) ListGrants(ctx context.Context, actorID, fileID string) ([]service.SharedEntry, error) {
	args := m.Called(ctx, actorID, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.SharedEntry), args.Error(1)
}

func (m *MockShareService) SharedWithMe(ctx context.Context, actorID string) ([]model.File, error) {
	args := m.Called(ctx, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.File), args.Error(1)
}
