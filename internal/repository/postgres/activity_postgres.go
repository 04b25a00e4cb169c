package postgres

import (
	"context"
	"database/sql"

	"filevault/internal/model"
	"filevault/internal/repository"
)

// ActivityPostgres is a PostgreSQL implementation of repository.ActivityRepository.
type ActivityPostgres struct {
	db *sql.DB
}

// NewActivityPostgres creates a new ActivityPostgres repository.
func NewActivityPostgres(db *sql.DB) *ActivityPostgres {
	return &ActivityPostgres{db: db}
}

var _ repository.ActivityRepository = (*ActivityPostgres)(nil)

// Create appends an activity record. Records are never updated afterwards.
func (r *ActivityPostgres) Create(ctx context.Context, a *model.Activity) error {
	const q = `
		INSERT INTO activities (id, user_id, action, file_id, folder_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, q, a.ID, a.UserID, a.Action, a.FileID, a.FolderID, a.Timestamp)
	return err
}

// ListRecent returns the user's newest activity records.
func (r *ActivityPostgres) ListRecent(ctx context.Context, userID string, limit int) ([]model.Activity, error) {
	const q = `
		SELECT id, user_id, action, file_id, folder_id, occurred_at
		FROM activities
		WHERE user_id = $1
		ORDER BY occurred_at DESC, id DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, q, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Activity, 0)
	for rows.Next() {
		var a model.Activity
		if err := rows.Scan(&a.ID, &a.UserID, &a.Action, &a.FileID, &a.FolderID, &a.Timestamp); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
