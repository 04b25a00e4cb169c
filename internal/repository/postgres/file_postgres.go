package postgres

import (
	"context"
	"database/sql"

	"filevault/internal/model"
	"filevault/internal/repository"
)

// FilePostgres is a PostgreSQL implementation of repository.FileRepository.
type FilePostgres struct {
	db *sql.DB
}

// NewFilePostgres creates a new FilePostgres repository.
func NewFilePostgres(db *sql.DB) *FilePostgres {
	return &FilePostgres{db: db}
}

var _ repository.FileRepository = (*FilePostgres)(nil)

const fileColumns = `id, name, storage_key, content_type, size, owner_id, folder_id,
		is_starred, is_trashed, is_encrypted, created_at, updated_at`

func scanFile(row *sql.Row) (*model.File, error) {
	var f model.File
	if err := row.Scan(
		&f.ID,
		&f.Name,
		&f.StorageKey,
		&f.ContentType,
		&f.Size,
		&f.OwnerID,
		&f.FolderID,
		&f.IsStarred,
		&f.IsTrashed,
		&f.IsEncrypted,
		&f.CreatedAt,
		&f.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &f, nil
}

func collectFiles(rows *sql.Rows) ([]model.File, error) {
	defer rows.Close()
	items := make([]model.File, 0)
	for rows.Next() {
		var f model.File
		if err := rows.Scan(
			&f.ID,
			&f.Name,
			&f.StorageKey,
			&f.ContentType,
			&f.Size,
			&f.OwnerID,
			&f.FolderID,
			&f.IsStarred,
			&f.IsTrashed,
			&f.IsEncrypted,
			&f.CreatedAt,
			&f.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Create inserts a new file row and returns the stored record.
func (r *FilePostgres) Create(ctx context.Context, f *model.File) (*model.File, error) {
	const q = `
		INSERT INTO files (id, name, storage_key, content_type, size, owner_id, folder_id,
			is_starred, is_trashed, is_encrypted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + fileColumns
	row := r.db.QueryRowContext(ctx, q,
		f.ID,
		f.Name,
		f.StorageKey,
		f.ContentType,
		f.Size,
		f.OwnerID,
		f.FolderID,
		f.IsStarred,
		f.IsTrashed,
		f.IsEncrypted,
		f.CreatedAt,
		f.UpdatedAt,
	)
	return scanFile(row)
}

// FindByID fetches a single file by id.
func (r *FilePostgres) FindByID(ctx context.Context, id string) (*model.File, error) {
	const q = `SELECT ` + fileColumns + ` FROM files WHERE id = $1`
	return scanFile(r.db.QueryRowContext(ctx, q, id))
}

// ListByFolder returns files placed in a folder, newest-updated first.
func (r *FilePostgres) ListByFolder(ctx context.Context, folderID string, includeTrashed bool) ([]model.File, error) {
	const q = `
		SELECT ` + fileColumns + `
		FROM files
		WHERE folder_id = $1 AND (is_trashed = false OR $2)
		ORDER BY updated_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, folderID, includeTrashed)
	if err != nil {
		return nil, err
	}
	return collectFiles(rows)
}

// ListTrashed returns the owner's trashed files.
func (r *FilePostgres) ListTrashed(ctx context.Context, ownerID string) ([]model.File, error) {
	const q = `
		SELECT ` + fileColumns + `
		FROM files
		WHERE owner_id = $1 AND is_trashed = true
		ORDER BY updated_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	return collectFiles(rows)
}

// ListStarred returns the owner's starred, non-trashed files.
func (r *FilePostgres) ListStarred(ctx context.Context, ownerID string) ([]model.File, error) {
	const q = `
		SELECT ` + fileColumns + `
		FROM files
		WHERE owner_id = $1 AND is_starred = true AND is_trashed = false
		ORDER BY updated_at DESC, id DESC
	`
	rows, err := r.db.QueryContext(ctx, q, ownerID)
	if err != nil {
		return nil, err
	}
	return collectFiles(rows)
}

// ListRecent returns the owner's most recently updated non-trashed files.
func (r *FilePostgres) ListRecent(ctx context.Context, ownerID string, limit int) ([]model.File, error) {
	const q = `
		SELECT ` + fileColumns + `
		FROM files
		WHERE owner_id = $1 AND is_trashed = false
		ORDER BY updated_at DESC, id DESC
		LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, q, ownerID, limit)
	if err != nil {
		return nil, err
	}
	return collectFiles(rows)
}

func (r *FilePostgres) exec(ctx context.Context, q string, args ...any) error {
	res, err := r.db.ExecContext(ctx, q, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// SetTrashed flips the trash flag.
func (r *FilePostgres) SetTrashed(ctx context.Context, id string, trashed bool) error {
	const q = `UPDATE files SET is_trashed = $2, updated_at = now() WHERE id = $1`
	return r.exec(ctx, q, id, trashed)
}

// SetStarred flips the star flag.
func (r *FilePostgres) SetStarred(ctx context.Context, id string, starred bool) error {
	const q = `UPDATE files SET is_starred = $2, updated_at = now() WHERE id = $1`
	return r.exec(ctx, q, id, starred)
}

// Rename updates the display name.
func (r *FilePostgres) Rename(ctx context.Context, id, name string) error {
	const q = `UPDATE files SET name = $2, updated_at = now() WHERE id = $1`
	return r.exec(ctx, q, id, name)
}

// SetFolder moves a file to another folder; nil places it at root level.
func (r *FilePostgres) SetFolder(ctx context.Context, id string, folderID *string) error {
	const q = `UPDATE files SET folder_id = $2, updated_at = now() WHERE id = $1`
	return r.exec(ctx, q, id, folderID)
}

// Delete removes a file row by id. It does not return an error if the row does not exist.
func (r *FilePostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM files WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// SearchByName returns the owner's non-trashed files matching the ILIKE pattern.
func (r *FilePostgres) SearchByName(ctx context.Context, ownerID, pattern string) ([]model.File, error) {
	const q = `
		SELECT ` + fileColumns + `
		FROM files
		WHERE owner_id = $1 AND is_trashed = false AND name ILIKE $2
		ORDER BY name ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, q, ownerID, pattern)
	if err != nil {
		return nil, err
	}
	return collectFiles(rows)
}
