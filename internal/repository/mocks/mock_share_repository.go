package mocks

import (
	"context"

	"filevault/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockShareRepository struct {
	mock.Mock
}

func (m *MockShareRepository) Upsert(ctx context.Context, g *model.ShareGrant) error {
	args := m.Called(ctx, g)
	return args.Error(0)
}

func (m *MockShareRepository) Find(ctx context.Context, fileID, userID string) (*model.ShareGrant, error) {
	args := m.Called(ctx, fileID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ShareGrant), args.Error(1)
}

func (m *MockShareRepository) Delete(ctx context.Context, fileID, userID string) error {
	args := m.Called(ctx, fileID, userID)
	return args.Error(0)
}

func (m *MockShareRepository) ListByFile(ctx context.Context, fileID string) ([]model.ShareGrant, error) {
	args := m.Called(ctx, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.ShareGrant), args.Error(1)
}

func (m *MockShareRepository) ListSharedWith(ctx context.Context, userID string) ([]model.File, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.File), args.Error(1)
}
