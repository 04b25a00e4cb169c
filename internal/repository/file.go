package repository

import (
	"context"

	"filevault/internal/model"
)

// FileRepository defines data access for file metadata records.
type FileRepository interface {
	// Create inserts a new file record. The storage_key column is unique;
	// a collision surfaces as a constraint violation rather than an
	// overwrite.
	Create(ctx context.Context, f *model.File) (*model.File, error)

	// FindByID returns a file by id.
	FindByID(ctx context.Context, id string) (*model.File, error)

	// ListByFolder returns the files placed in a folder. Trashed files are
	// excluded unless includeTrashed is set (cascade deletion needs them).
	ListByFolder(ctx context.Context, folderID string, includeTrashed bool) ([]model.File, error)

	// ListTrashed returns the owner's trashed files.
	ListTrashed(ctx context.Context, ownerID string) ([]model.File, error)

	// ListStarred returns the owner's starred, non-trashed files.
	ListStarred(ctx context.Context, ownerID string) ([]model.File, error)

	// ListRecent returns the owner's non-trashed files by most recent
	// update.
	ListRecent(ctx context.Context, ownerID string, limit int) ([]model.File, error)

	// SetTrashed flips the trash flag and advances updated_at.
	SetTrashed(ctx context.Context, id string, trashed bool) error

	// SetStarred flips the star flag and advances updated_at.
	SetStarred(ctx context.Context, id string, starred bool) error

	// Rename updates the display name and advances updated_at.
	Rename(ctx context.Context, id, name string) error

	// SetFolder moves the file to another folder (nil = root level) and
	// advances updated_at.
	SetFolder(ctx context.Context, id string, folderID *string) error

	// Delete removes a file record by id.
	Delete(ctx context.Context, id string) error

	// SearchByName returns the owner's non-trashed files whose display name
	// matches the ILIKE pattern.
	SearchByName(ctx context.Context, ownerID, pattern string) ([]model.File, error)
}
