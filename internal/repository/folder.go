package repository

import (
	"context"

	"filevault/internal/model"
)

// FolderRepository defines data access for folder-tree nodes.
type FolderRepository interface {
	// Create inserts a new folder record.
	Create(ctx context.Context, f *model.Folder) (*model.Folder, error)

	// FindByID returns a folder by id.
	FindByID(ctx context.Context, id string) (*model.Folder, error)

	// FindRoot returns the owner's root folder (parent_id IS NULL).
	FindRoot(ctx context.Context, ownerID string) (*model.Folder, error)

	// ListChildren returns the direct subfolders of a folder.
	ListChildren(ctx context.Context, parentID string) ([]model.Folder, error)

	// SetParent re-parents a folder and advances updated_at. Cycle and
	// ownership checks happen in the service before this is called.
	SetParent(ctx context.Context, id, parentID string) error

	// Delete removes a single folder row. Cascade ordering (children before
	// parents) is the caller's responsibility.
	Delete(ctx context.Context, id string) error

	// SearchByName returns the owner's folders whose name matches the
	// ILIKE pattern.
	SearchByName(ctx context.Context, ownerID, pattern string) ([]model.Folder, error)
}
