package repository

import (
	"context"

	"filevault/internal/model"
)

// UserRepository defines data access for user accounts and the per-user
// storage ledger.
type UserRepository interface {
	// Create inserts a new user record and returns the stored row.
	Create(ctx context.Context, u *model.User) (*model.User, error)

	// FindByID returns a user by id.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail returns a user by email.
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// ReserveStorage atomically adds n bytes to the user's storage_used,
	// guarded by storage_used + n <= storage_limit. The check and the
	// increment are one statement, so two concurrent reservations can never
	// both pass when only one fits. Returns false when the reservation
	// would exceed the limit (or the user does not exist).
	ReserveStorage(ctx context.Context, userID string, n int64) (bool, error)

	// ReleaseStorage atomically subtracts n bytes from storage_used,
	// flooring at zero. Returns true when flooring occurred, which means
	// more bytes were released than were accounted for.
	ReleaseStorage(ctx context.Context, userID string, n int64) (bool, error)
}
