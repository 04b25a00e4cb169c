package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"filevault/internal/model"
	"filevault/internal/repository"
	"filevault/internal/storage"
)

// maxTreeDepth bounds ancestor walks. The acyclicity invariant makes the
// bound unreachable for well-formed data; hitting it means the tree is
// corrupt and the walk must not spin.
const maxTreeDepth = 1000

// FolderListing is the service-level DTO for a folder's direct contents.
type FolderListing struct {
	Folder     *model.Folder  `json:"folder"`
	Files      []model.File   `json:"files"`
	Subfolders []model.Folder `json:"subfolders"`
}

// CascadeSummary reports what a cascading folder delete did. BlobFailures
// lists storage keys whose blob could not be removed; the records are gone
// regardless.
type CascadeSummary struct {
	FoldersDeleted int      `json:"folders_deleted"`
	FilesDeleted   int      `json:"files_deleted"`
	BytesReleased  int64    `json:"bytes_released"`
	BlobFailures   []string `json:"blob_failures,omitempty"`
}

// FolderService defines the folder-tree use cases.
type FolderService interface {
	// Create adds a folder under a parent owned by the actor.
	Create(ctx context.Context, actorID, name, parentID string) (*model.Folder, error)

	// Root returns the actor's root folder.
	Root(ctx context.Context, actorID string) (*model.Folder, error)

	// Breadcrumbs returns the ancestor chain from the root down to the
	// folder, both ends inclusive.
	Breadcrumbs(ctx context.Context, actorID, folderID string) ([]model.Folder, error)

	// ListChildren returns the folder's non-trashed files and subfolders.
	ListChildren(ctx context.Context, actorID, folderID string) (*FolderListing, error)

	// Move re-parents a folder. Moving a folder under itself or any of its
	// descendants is rejected.
	Move(ctx context.Context, actorID, folderID, newParentID string) error

	// DeleteCascade hard-deletes a folder with its entire descendant
	// subtree and contained files, releasing quota and deleting blobs.
	// This path bypasses trash.
	DeleteCascade(ctx context.Context, actorID, folderID string) (*CascadeSummary, error)
}

type folderService struct {
	folders  repository.FolderRepository
	files    repository.FileRepository
	users    repository.UserRepository
	store    storage.Storage
	activity ActivityService
}

// NewFolderService constructs a new FolderService.
func NewFolderService(
	folders repository.FolderRepository,
	files repository.FileRepository,
	users repository.UserRepository,
	store storage.Storage,
	activity ActivityService,
) FolderService {
	return &folderService{folders: folders, files: files, users: users, store: store, activity: activity}
}

func validateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", ErrValidation)
	}
	if utf8.RuneCountInString(name) > MaxNameLen {
		return "", fmt.Errorf("%w: name exceeds %d characters", ErrValidation, MaxNameLen)
	}
	return name, nil
}

// ownedFolder loads a folder and verifies the actor owns it. A missing
// folder is NotFound; someone else's folder is Forbidden, never NotFound.
func (s *folderService) ownedFolder(ctx context.Context, actorID, folderID string) (*model.Folder, error) {
	folder, err := s.folders.FindByID(ctx, folderID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find folder: %w", err)
	}
	if folder.OwnerID != actorID {
		return nil, ErrForbidden
	}
	return folder, nil
}

func (s *folderService) Create(ctx context.Context, actorID, name, parentID string) (*model.Folder, error) {
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	if parentID == "" {
		return nil, fmt.Errorf("%w: parent folder is required", ErrValidation)
	}

	// Cross-owner parenting is an authorization failure, not a model error.
	if _, err := s.ownedFolder(ctx, actorID, parentID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	folder, err := s.folders.Create(ctx, &model.Folder{
		ID:        uuid.New().String(),
		Name:      name,
		OwnerID:   actorID,
		ParentID:  &parentID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("create folder: %w", err)
	}

	s.activity.Record(ctx, actorID, model.ActionCreateFolder, nil, &folder.ID)
	return folder, nil
}

func (s *folderService) Root(ctx context.Context, actorID string) (*model.Folder, error) {
	root, err := s.folders.FindRoot(ctx, actorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find root folder: %w", err)
	}
	return root, nil
}

func (s *folderService) Breadcrumbs(ctx context.Context, actorID, folderID string) ([]model.Folder, error) {
	folder, err := s.ownedFolder(ctx, actorID, folderID)
	if err != nil {
		return nil, err
	}

	chain := []model.Folder{*folder}
	current := folder
	for depth := 0; current.ParentID != nil; depth++ {
		if depth >= maxTreeDepth {
			return nil, fmt.Errorf("folder %s: ancestor chain exceeds depth limit", folderID)
		}
		parent, err := s.folders.FindByID(ctx, *current.ParentID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrNotFound
			}
			return nil, fmt.Errorf("find ancestor: %w", err)
		}
		chain = append(chain, *parent)
		current = parent
	}

	// Walked leaf-to-root; breadcrumbs read root-to-leaf.
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

func (s *folderService) ListChildren(ctx context.Context, actorID, folderID string) (*FolderListing, error) {
	folder, err := s.ownedFolder(ctx, actorID, folderID)
	if err != nil {
		return nil, err
	}

	files, err := s.files.ListByFolder(ctx, folderID, false)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	subfolders, err := s.folders.ListChildren(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("list subfolders: %w", err)
	}

	return &FolderListing{Folder: folder, Files: files, Subfolders: subfolders}, nil
}

// isDescendantOrSelf walks candidate's ancestor chain looking for folderID.
func (s *folderService) isDescendantOrSelf(ctx context.Context, folderID string, candidate *model.Folder) (bool, error) {
	current := candidate
	for depth := 0; ; depth++ {
		if current.ID == folderID {
			return true, nil
		}
		if current.ParentID == nil {
			return false, nil
		}
		if depth >= maxTreeDepth {
			return false, fmt.Errorf("folder %s: ancestor chain exceeds depth limit", candidate.ID)
		}
		parent, err := s.folders.FindByID(ctx, *current.ParentID)
		if err != nil {
			return false, fmt.Errorf("find ancestor: %w", err)
		}
		current = parent
	}
}

func (s *folderService) Move(ctx context.Context, actorID, folderID, newParentID string) error {
	folder, err := s.ownedFolder(ctx, actorID, folderID)
	if err != nil {
		return err
	}
	if folder.IsRoot() {
		return fmt.Errorf("%w: root folder cannot be moved", ErrValidation)
	}

	newParent, err := s.ownedFolder(ctx, actorID, newParentID)
	if err != nil {
		return err
	}

	// Re-parenting under the folder's own subtree would create a cycle.
	cyclic, err := s.isDescendantOrSelf(ctx, folderID, newParent)
	if err != nil {
		return err
	}
	if cyclic {
		return fmt.Errorf("%w: cannot move a folder into its own subtree", ErrValidation)
	}

	if err := s.folders.SetParent(ctx, folderID, newParentID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("set parent: %w", err)
	}

	s.activity.Record(ctx, actorID, model.ActionMoveFolder, nil, &folderID)
	return nil
}

func (s *folderService) DeleteCascade(ctx context.Context, actorID, folderID string) (*CascadeSummary, error) {
	folder, err := s.ownedFolder(ctx, actorID, folderID)
	if err != nil {
		return nil, err
	}
	if folder.IsRoot() {
		return nil, fmt.Errorf("%w: root folder cannot be deleted", ErrValidation)
	}

	// Enumerate the full descendant closure before any destructive step.
	// Children created after this point may survive the cascade; that race
	// is tolerated and quota is only released for files actually deleted.
	folderIDs := []string{folderID}
	var doomed []model.File
	for i := 0; i < len(folderIDs); i++ {
		if i > maxTreeDepth*maxTreeDepth {
			return nil, fmt.Errorf("folder %s: descendant closure exceeds size limit", folderID)
		}
		id := folderIDs[i]
		children, err := s.folders.ListChildren(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("enumerate subfolders: %w", err)
		}
		for _, child := range children {
			folderIDs = append(folderIDs, child.ID)
		}
		files, err := s.files.ListByFolder(ctx, id, true)
		if err != nil {
			return nil, fmt.Errorf("enumerate files: %w", err)
		}
		doomed = append(doomed, files...)
	}

	summary := &CascadeSummary{}
	for _, f := range doomed {
		clamped, err := s.users.ReleaseStorage(ctx, f.OwnerID, f.Size)
		if err != nil {
			return summary, fmt.Errorf("release quota for file %s: %w", f.ID, err)
		}
		if clamped {
			logWarn("storage_ledger_clamped", map[string]any{"user_id": f.OwnerID, "file_id": f.ID})
		}

		// Blob failures never abort the cascade; they are collected into
		// the summary so the records and the tree view stay consistent.
		if err := s.store.Delete(ctx, f.StorageKey); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			summary.BlobFailures = append(summary.BlobFailures, f.StorageKey)
			logWarn("cascade_blob_delete_failed", map[string]any{"storage_key": f.StorageKey, "error": err.Error()})
		}

		if err := s.files.Delete(ctx, f.ID); err != nil {
			return summary, fmt.Errorf("delete file record %s: %w", f.ID, err)
		}
		summary.FilesDeleted++
		summary.BytesReleased += f.Size
	}

	// Children before parents.
	for i := len(folderIDs) - 1; i >= 0; i-- {
		if err := s.folders.Delete(ctx, folderIDs[i]); err != nil {
			return summary, fmt.Errorf("delete folder record %s: %w", folderIDs[i], err)
		}
		summary.FoldersDeleted++
	}

	if len(summary.BlobFailures) > 0 {
		logWarn("cascade_completed_with_blob_failures", map[string]any{
			"folder_id": folderID,
			"failures":  len(summary.BlobFailures),
		})
	}

	// The folder row is gone, so the record carries no folder reference.
	s.activity.Record(ctx, actorID, model.ActionDeleteFolder, nil, nil)
	return summary, nil
}
