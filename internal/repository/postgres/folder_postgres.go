package postgres

import (
	"context"
	"database/sql"

	"filevault/internal/model"
	"filevault/internal/repository"
)

// FolderPostgres is a PostgreSQL implementation of repository.FolderRepository.
type FolderPostgres struct {
	db *sql.DB
}

// NewFolderPostgres creates a new FolderPostgres repository.
func NewFolderPostgres(db *sql.DB) *FolderPostgres {
	return &FolderPostgres{db: db}
}

var _ repository.FolderRepository = (*FolderPostgres)(nil)

const folderColumns = `id, name, owner_id, parent_id, created_at, updated_at`

func scanFolder(row *sql.Row) (*model.Folder, error) {
	var f model.Folder
	if err := row.Scan(
		&f.ID,
		&f.Name,
		&f.OwnerID,
		&f.ParentID,
		&f.CreatedAt,
		&f.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &f, nil
}

func collectFolders(rows *sql.Rows) ([]model.Folder, error) {
	defer rows.Close()
	items := make([]model.Folder, 0)
	for rows.Next() {
		var f model.Folder
		if err := rows.Scan(
			&f.ID,
			&f.Name,
			&f.OwnerID,
			&f.ParentID,
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

// Create inserts a new folder row and returns the stored record.
func (r *FolderPostgres) Create(ctx context.Context, f *model.Folder) (*model.Folder, error) {
	const q = `
		INSERT INTO folders (id, name, owner_id, parent_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + folderColumns
	row := r.db.QueryRowContext(ctx, q,
		f.ID,
		f.Name,
		f.OwnerID,
		f.ParentID,
		f.CreatedAt,
		f.UpdatedAt,
	)
	return scanFolder(row)
}

// FindByID fetches a single folder by id.
func (r *FolderPostgres) FindByID(ctx context.Context, id string) (*model.Folder, error) {
	const q = `SELECT ` + folderColumns + ` FROM folders WHERE id = $1`
	return scanFolder(r.db.QueryRowContext(ctx, q, id))
}

// FindRoot fetches the owner's root folder.
func (r *FolderPostgres) FindRoot(ctx context.Context, ownerID string) (*model.Folder, error) {
	const q = `SELECT ` + folderColumns + ` FROM folders WHERE owner_id = $1 AND parent_id IS NULL`
	return scanFolder(r.db.QueryRowContext(ctx, q, ownerID))
}

// ListChildren returns the direct subfolders of a folder, name-ordered.
func (r *FolderPostgres) ListChildren(ctx context.Context, parentID string) ([]model.Folder, error) {
	const q = `SELECT ` + folderColumns + ` FROM folders WHERE parent_id = $1 ORDER BY name ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, q, parentID)
	if err != nil {
		return nil, err
	}
	return collectFolders(rows)
}

// SetParent re-parents a folder.
func (r *FolderPostgres) SetParent(ctx context.Context, id, parentID string) error {
	const q = `UPDATE folders SET parent_id = $2, updated_at = now() WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, parentID)
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

// Delete removes a folder row by id. It does not return an error if the row does not exist.
func (r *FolderPostgres) Delete(ctx context.Context, id string) error {
	const q = `DELETE FROM folders WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

// SearchByName returns the owner's folders matching the ILIKE pattern.
func (r *FolderPostgres) SearchByName(ctx context.Context, ownerID, pattern string) ([]model.Folder, error) {
	const q = `
		SELECT ` + folderColumns + `
		FROM folders
		WHERE owner_id = $1 AND name ILIKE $2
		ORDER BY name ASC, id ASC
	`
	rows, err := r.db.QueryContext(ctx, q, ownerID, pattern)
	if err != nil {
		return nil, err
	}
	return collectFolders(rows)
}
