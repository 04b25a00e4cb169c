package model

import "time"

// Permission is the access level attached to a share grant.
//
// PermissionEdit is stored and returned verbatim but currently grants the
// same capability as view (download/preview); it exists so a future
// edit-in-place operation does not need a schema change.
type Permission string

const (
	PermissionView Permission = "view"
	PermissionEdit Permission = "edit"
)

// Valid reports whether p is a known permission level.
func (p Permission) Valid() bool {
	return p == PermissionView || p == PermissionEdit
}

// ShareGrant authorizes a non-owner to access a file. At most one grant
// exists per (file, user) pair; re-sharing updates the permission in place.
type ShareGrant struct {
	FileID     string     `json:"file_id"`
	UserID     string     `json:"user_id"`
	Permission Permission `json:"permission"`
	SharedOn   time.Time  `json:"shared_on"`
}
