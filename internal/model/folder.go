package model

import "time"

// Folder is a node in a user's folder tree. ParentID is nil only for the
// per-user root folder created at registration. A folder's parent always
// belongs to the same owner and a folder can never be its own ancestor.
type Folder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"owner_id"`
	ParentID  *string   `json:"parent_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsRoot reports whether the folder is the owner's root.
func (f *Folder) IsRoot() bool {
	return f.ParentID == nil
}
