package mocks

import (
	"context"

	"filevault/internal/model"
	"filevault/internal/service"

	"github.com/stretchr/testify/mock"
)

type MockFolderService struct {
	mock.Mock
}

func (m *MockFolderService) Create(ctx context.Context, actorID, name, parentID string) (*model.Folder, error) {
	args := m.Called(ctx, actorID, name, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockFolderService) Root(ctx context.Context, actorID string) (*model.Folder, error) {
	args := m.Called(ctx, actorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Folder), args.Error(1)
}

func (m *MockFolderService) Breadcrumbs(ctx context.Context, actorID, folderID string) ([]model.Folder, error) {
	args := m.Called(ctx, actorID, folderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Folder), args.Error(1)
}

func (m *MockFolderService) ListChildren(ctx context.Context, actorID, folderID string) (*service.FolderListing, error) {
	args := m.Called(ctx, actorID, folderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.FolderListing), args.Error(1)
}

func (m *MockFolderService) Move(ctx context.Context, actorID, folderID, newParentID string) error {
	args := m.Called(ctx, actorID, folderID, newParentID)
	return args.Error(0)
}

func (m *MockFolderService) DeleteCascade(ctx context.Context, actorID, folderID string) (*service.CascadeSummary, error) {
	args := m.Called(ctx, actorID, folderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.CascadeSummary), args.Error(1)
}
