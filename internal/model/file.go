package model

import "time"

// File is a stored object's metadata record.
//
// StorageKey is the opaque blob-store key. It is assigned once at upload,
// never reused, and unique across all files ever created. A trashed file
// keeps its FolderID so a restore returns it to its original location.
type File struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	StorageKey  string    `json:"storage_key"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	OwnerID     string    `json:"owner_id"`
	FolderID    *string   `json:"folder_id,omitempty"`
	IsStarred   bool      `json:"is_starred"`
	IsTrashed   bool      `json:"is_trashed"`
	IsEncrypted bool      `json:"is_encrypted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
