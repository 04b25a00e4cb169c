package model

import "time"

// Action tags recorded in the activity log.
const (
	ActionRegister        = "register"
	ActionUpload          = "upload"
	ActionDownload        = "download"
	ActionPreview         = "preview"
	ActionTrash           = "trash"
	ActionRestore         = "restore"
	ActionPermanentDelete = "permanent_delete"
	ActionRename          = "rename"
	ActionStar            = "star"
	ActionUnstar          = "unstar"
	ActionMove            = "move"
	ActionShare           = "share"
	ActionUnshare         = "unshare"
	ActionRemoveShared    = "remove_shared"
	ActionCreateFolder    = "create_folder"
	ActionDeleteFolder    = "delete_folder"
	ActionMoveFolder      = "move_folder"
)

// Activity is an append-only audit record. File and folder references are
// nullable so the record survives a hard delete of what it points at.
type Activity struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Action    string    `json:"action"`
	FileID    *string   `json:"file_id,omitempty"`
	FolderID  *string   `json:"folder_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
