package mocks

import (
	"context"

	"filevault/internal/model"

	"github.com/stretchr/testify/mock"
)

type MockActivityService struct {
	mock.Mock
}

func (m *MockActivityService) Record(ctx context.Context, actorID, action string, fileID, folderID *string) {
	m.Called(ctx, actorID, action, fileID, folderID)
}

func (m *MockActivityService) Recent(ctx context.Context, actorID string, limit int) ([]model.Activity, error) {
	args := m.Called(ctx, actorID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Activity), args.Error(1)
}
