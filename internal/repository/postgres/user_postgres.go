package postgres

import (
	"context"
	"database/sql"

	"filevault/internal/model"
	"filevault/internal/repository"
)

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
// It uses database/sql with parameterized queries and contains no business logic.
type UserPostgres struct {
	db *sql.DB
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

const userColumns = `id, username, email, password_hash, storage_used, storage_limit, created_at`

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.StorageUsed,
		&u.StorageLimit,
		&u.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user row and returns the stored record.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	const q = `
		INSERT INTO users (id, username, email, password_hash, storage_used, storage_limit, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING ` + userColumns
	row := r.db.QueryRowContext(ctx, q,
		u.ID,
		u.Username,
		u.Email,
		u.PasswordHash,
		u.StorageUsed,
		u.StorageLimit,
		u.CreatedAt,
	)
	return scanUser(row)
}

// FindByID fetches a single user by id.
func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, id))
}

// FindByEmail fetches a single user by email.
func (r *UserPostgres) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(r.db.QueryRowContext(ctx, q, email))
}

// ReserveStorage performs the quota check and increment as one guarded
// UPDATE. The row lock taken by the statement serializes concurrent
// reservations for the same user; zero rows affected means the reservation
// does not fit (or the user is gone).
func (r *UserPostgres) ReserveStorage(ctx context.Context, userID string, n int64) (bool, error) {
	const q = `
		UPDATE users
		SET storage_used = storage_used + $2
		WHERE id = $1 AND storage_used + $2 <= storage_limit
	`
	res, err := r.db.ExecContext(ctx, q, userID, n)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// ReleaseStorage decrements storage_used, flooring at zero. The CTE reads
// the prior value under the same row lock so the statement can report
// whether the floor was hit.
func (r *UserPostgres) ReleaseStorage(ctx context.Context, userID string, n int64) (bool, error) {
	const q = `
		WITH prev AS (
			SELECT storage_used FROM users WHERE id = $1 FOR UPDATE
		)
		UPDATE users
		SET storage_used = GREATEST(users.storage_used - $2, 0)
		FROM prev
		WHERE users.id = $1
		RETURNING prev.storage_used < $2
	`
	var clamped bool
	if err := r.db.QueryRowContext(ctx, q, userID, n).Scan(&clamped); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}
	return clamped, nil
}
