package postgres

import (
	"context"
	"database/sql"

	"filevault/internal/model"
	"filevault/internal/repository"
)

// SharePostgres is a PostgreSQL implementation of repository.ShareRepository.
type SharePostgres struct {
	db *sql.DB
}

// NewSharePostgres creates a new SharePostgres repository.
func NewSharePostgres(db *sql.DB) *SharePostgres {
	return &SharePostgres{db: db}
}

var _ repository.ShareRepository = (*SharePostgres)(nil)

// Upsert inserts a grant; the (file_id, user_id) primary key turns a
// re-share into a permission update.
func (r *SharePostgres) Upsert(ctx context.Context, g *model.ShareGrant) error {
	const q = `
		INSERT INTO shares (file_id, user_id, permission, shared_on)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (file_id, user_id) DO UPDATE SET permission = EXCLUDED.permission
	`
	_, err := r.db.ExecContext(ctx, q, g.FileID, g.UserID, g.Permission, g.SharedOn)
	return err
}

// Find returns the grant for a (file, user) pair.
func (r *SharePostgres) Find(ctx context.Context, fileID, userID string) (*model.ShareGrant, error) {
	const q = `
		SELECT file_id, user_id, permission, shared_on
		FROM shares
		WHERE file_id = $1 AND user_id = $2
	`
	var g model.ShareGrant
	if err := r.db.QueryRowContext(ctx, q, fileID, userID).Scan(
		&g.FileID,
		&g.UserID,
		&g.Permission,
		&g.SharedOn,
	); err != nil {
		return nil, err
	}
	return &g, nil
}

// Delete removes a grant. It does not return an error if the row does not exist.
func (r *SharePostgres) Delete(ctx context.Context, fileID, userID string) error {
	const q = `DELETE FROM shares WHERE file_id = $1 AND user_id = $2`
	_, err := r.db.ExecContext(ctx, q, fileID, userID)
	return err
}

// ListByFile returns all grants on a file.
func (r *SharePostgres) ListByFile(ctx context.Context, fileID string) ([]model.ShareGrant, error) {
	const q = `
		SELECT file_id, user_id, permission, shared_on
		FROM shares
		WHERE file_id = $1
		ORDER BY shared_on ASC
	`
	rows, err := r.db.QueryContext(ctx, q, fileID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.ShareGrant, 0)
	for rows.Next() {
		var g model.ShareGrant
		if err := rows.Scan(&g.FileID, &g.UserID, &g.Permission, &g.SharedOn); err != nil {
			return nil, err
		}
		items = append(items, g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// ListSharedWith returns the non-trashed files shared with a user.
func (r *SharePostgres) ListSharedWith(ctx context.Context, userID string) ([]model.File, error) {
	const q = `
		SELECT f.id, f.name, f.storage_key, f.content_type, f.size, f.owner_id, f.folder_id,
			f.is_starred, f.is_trashed, f.is_encrypted, f.created_at, f.updated_at
		FROM files f
		JOIN shares s ON s.file_id = f.id
		WHERE s.user_id = $1 AND f.is_trashed = false
		ORDER BY s.shared_on DESC, f.id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	return collectFiles(rows)
}
