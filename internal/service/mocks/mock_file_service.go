package mocks

import (
	"context"
	"io"

	"filevault/internal/model"
	"filevault/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockFileService struct {
	mock.Mock
}

func (m *MockFileService) Upload(ctx context.Context, actorID string, r io.Reader, name, contentType string, folderID string) (*model.File, error) {
	args := m.Called(ctx, actorID, r, name, contentType, folderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileService) Get(ctx context.Context, actorID, fileID string) (*model.File, error) {
	args := m.Called(ctx, actorID, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.File), args.Error(1)
}

func (m *MockFileService) Download(ctx context.Context, actorID, fileID string) (*service.FileContent, error) {
	args := m.Called(ctx, actorID, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FileContent), args.Error(1)
}

func (m *MockFileService) Preview(ctx context.Context, actorID, fileID string) (*service.FileContent, error) {
	args := m.Called(ctx, actorID, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FileContent), args.Error(1)
}

func (m *MockFileService) Trash(ctx context.Context, actorID, fileID string) error {
	args := m.Called(ctx, actorID, fileID)
	return args.Error(0)
}

func (m *MockFileService) Restore(ctx context.Context, actorID, fileID string) error {
	args := m.Called(ctx, actorID, fileID)
	return args.Error(0)
}

func (m *MockFileService) PermanentDelete(ctx context.Context, actorID, fileID string) error {
	args := m.Called(ctx, actorID, fileID)
	return args.Error(0)
}

func (m *MockFileService) Rename(ctx context.Context, actorID, fileID, name string) error {
	args := m.Called(ctx, actorID, fileID, name)
	return args.Error(0)
}

func (m *MockFileService) ToggleStar(ctx context.Context, actorID, fileID string) (bool, error) {
	args := m.Called(ctx, actorID, fileID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFileService) Move(ctx context.Context, actorID, fileID, folderID string) error {
	args := m.Called(ctx, actorID, fileID, folderID)
	return args.Error(0)
}

func (m *MockFileService) ListTrash(ctx context.Context, actorID string) ([]model.File, error) {
	args := m.Called(ctx, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.File), args.Error(1)
}

func (m *MockFileService) ListStarred(ctx context.Context, actorID string) ([]model.File, error) {
	args := m.Called(ctx, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.File), args.Error(1)
}

func (m *MockFileService) ListRecent(ctx context.Context, actorID string, limit int) ([]model.File, error) {
	args := m.Called(ctx, actorID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.File), args.Error(1)
}
