package repository

import (
	"context"

	"filevault/internal/model"
)

// ActivityRepository defines data access for the append-only activity log.
type ActivityRepository interface {
	// Create appends an activity record.
	Create(ctx context.Context, a *model.Activity) error

	// ListRecent returns the user's newest activity records.
	ListRecent(ctx context.Context, userID string, limit int) ([]model.Activity, error)
}
