package model

import "time"

// DefaultStorageLimit is the quota assigned at registration (1 GiB).
const DefaultStorageLimit int64 = 1 << 30

// User is an account that owns a folder tree and a storage quota.
// StorageUsed must never exceed StorageLimit after a committed mutation;
// the repository enforces this inside the quota reservation statement.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	StorageUsed  int64     `json:"storage_used"`
	StorageLimit int64     `json:"storage_limit"`
	CreatedAt    time.Time `json:"created_at"`
}
