package repository

import (
	"context"

	"filevault/internal/model"
)

// ShareRepository defines data access for share grants.
type ShareRepository interface {
	// Upsert inserts a grant or, when one already exists for the
	// (file, user) pair, updates its permission in place.
	Upsert(ctx context.Context, g *model.ShareGrant) error

	// Find returns the grant for a (file, user) pair.
	Find(ctx context.Context, fileID, userID string) (*model.ShareGrant, error)

	// Delete removes a grant. Deleting a missing grant is not an error.
	Delete(ctx context.Context, fileID, userID string) error

	// ListByFile returns all grants on a file.
	ListByFile(ctx context.Context, fileID string) ([]model.ShareGrant, error)

	// ListSharedWith returns the non-trashed files shared with a user.
	ListSharedWith(ctx context.Context, userID string) ([]model.File, error)
}
