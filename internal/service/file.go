package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"filevault/internal/cryptox"
	"filevault/internal/model"
	"filevault/internal/repository"
	"filevault/internal/storage"
)

// FileContent is the service-level DTO for a download or preview. Data is
// plaintext: decryption happens in memory on the way out and the buffer is
// discarded once the response is written, never persisted.
type FileContent struct {
	Name        string
	ContentType string
	Size        int64
	Data        []byte
}

// FileService drives the per-file lifecycle: upload into Active, the
// trash/restore pair, metadata mutations, and permanent destruction.
type FileService interface {
	// Upload creates a new Active file owned by the actor. Quota is
	// reserved before the blob write; when the deployment has an
	// encryption key the stored bytes are ciphertext. Any failure after
	// the reservation rolls it back.
	Upload(ctx context.Context, actorID string, r io.Reader, name, contentType string, folderID string) (*model.File, error)

	// Get returns file metadata readable by the actor.
	Get(ctx context.Context, actorID, fileID string) (*model.File, error)

	// Download returns the file's plaintext content. Owner or any grantee.
	Download(ctx context.Context, actorID, fileID string) (*FileContent, error)

	// Preview is Download with a distinct audit tag.
	Preview(ctx context.Context, actorID, fileID string) (*FileContent, error)

	// Trash soft-deletes an Active file. Quota and blob are untouched.
	Trash(ctx context.Context, actorID, fileID string) error

	// Restore returns a Trashed file to Active in its original folder.
	Restore(ctx context.Context, actorID, fileID string) error

	// PermanentDelete destroys a Trashed file: releases quota, deletes the
	// blob, removes the record. A second call reports NotFound.
	PermanentDelete(ctx context.Context, actorID, fileID string) error

	// Rename updates the display name in Active or Trashed state.
	Rename(ctx context.Context, actorID, fileID, name string) error

	// ToggleStar flips the star flag and returns the new value.
	ToggleStar(ctx context.Context, actorID, fileID string) (bool, error)

	// Move places the file in another folder; empty folderID means root
	// level.
	Move(ctx context.Context, actorID, fileID, folderID string) error

	// ListTrash returns the actor's trashed files.
	ListTrash(ctx context.Context, actorID string) ([]model.File, error)

	// ListStarred returns the actor's starred, non-trashed files.
	ListStarred(ctx context.Context, actorID string) ([]model.File, error)

	// ListRecent returns the actor's most recently touched files.
	ListRecent(ctx context.Context, actorID string, limit int) ([]model.File, error)
}

type fileService struct {
	files     repository.FileRepository
	folders   repository.FolderRepository
	users     repository.UserRepository
	store     storage.Storage
	codec     cryptox.Codec
	authz     *authorizer
	activity  ActivityService
	maxUpload int64
}

// NewFileService constructs a new FileService. codec may be nil, which
// disables at-rest encryption for the deployment. maxUpload of 0 means no
// per-file size cap beyond the owner's quota.
func NewFileService(
	files repository.FileRepository,
	folders repository.FolderRepository,
	users repository.UserRepository,
	shares repository.ShareRepository,
	store storage.Storage,
	codec cryptox.Codec,
	activity ActivityService,
	maxUpload int64,
) FileService {
	return &fileService{
		files:     files,
		folders:   folders,
		users:     users,
		store:     store,
		codec:     codec,
		authz:     &authorizer{shares: shares},
		activity:  activity,
		maxUpload: maxUpload,
	}
}

func (s *fileService) loadFile(ctx context.Context, fileID string) (*model.File, error) {
	if fileID == "" {
		return nil, fmt.Errorf("%w: file id is required", ErrValidation)
	}
	f, err := s.files.FindByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find file: %w", err)
	}
	return f, nil
}

// authorizedFile loads a file and runs the access-control decision.
func (s *fileService) authorizedFile(ctx context.Context, actorID, fileID string, capability Capability) (*model.File, error) {
	f, err := s.loadFile(ctx, fileID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.Authorize(ctx, actorID, f, capability); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *fileService) Upload(ctx context.Context, actorID string, r io.Reader, name, contentType string, folderID string) (*model.File, error) {
	if r == nil {
		return nil, fmt.Errorf("%w: content is required", ErrValidation)
	}
	name, err := validateName(name)
	if err != nil {
		return nil, err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	// Placement is checked before any byte is read or reserved.
	var folderRef *string
	if folderID != "" {
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
		folderRef = &folder.ID
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	if s.maxUpload > 0 && int64(len(data)) > s.maxUpload {
		return nil, fmt.Errorf("%w: file exceeds maximum upload size", ErrValidation)
	}
	size := int64(len(data))

	// Reservation precedes the blob write; everything after this point must
	// compensate on failure so no quota debt is orphaned.
	ok, err := s.users.ReserveStorage(ctx, actorID, size)
	if err != nil {
		return nil, fmt.Errorf("reserve quota: %w", err)
	}
	if !ok {
		return nil, ErrQuotaExceeded
	}

	encrypted := false
	payload := data
	if s.codec != nil {
		payload, err = s.codec.Encrypt(data)
		if err != nil {
			s.rollbackReservation(ctx, actorID, size)
			return nil, fmt.Errorf("encrypt content: %w", err)
		}
		encrypted = true
	}

	// Fresh UUID key: never reused, so a Put can never overwrite another
	// file's bytes.
	key := "files/" + uuid.New().String() + filepath.Ext(name)
	if _, err := s.store.Put(ctx, key, bytes.NewReader(payload), storage.PutObjectOptions{
		Size:        int64(len(payload)),
		ContentType: contentType,
		Metadata:    map[string]string{"owner-id": actorID},
	}); err != nil {
		s.rollbackReservation(ctx, actorID, size)
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	now := time.Now().UTC()
	stored, err := s.files.Create(ctx, &model.File{
		ID:          uuid.New().String(),
		Name:        name,
		StorageKey:  key,
		ContentType: contentType,
		Size:        size,
		OwnerID:     actorID,
		FolderID:    folderRef,
		IsEncrypted: encrypted,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		s.rollbackReservation(ctx, actorID, size)
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			return nil, fmt.Errorf("db save failed: %v; rollback delete failed: %v", err, delErr)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	s.activity.Record(ctx, actorID, model.ActionUpload, &stored.ID, nil)
	return stored, nil
}

func (s *fileService) rollbackReservation(ctx context.Context, actorID string, size int64) {
	clamped, err := s.users.ReleaseStorage(ctx, actorID, size)
	if err != nil {
		logWarn("reservation_rollback_failed", map[string]any{"user_id": actorID, "bytes": size, "error": err.Error()})
		return
	}
	if clamped {
		logWarn("storage_ledger_clamped", map[string]any{"user_id": actorID, "bytes": size})
	}
}

func (s *fileService) Get(ctx context.Context, actorID, fileID string) (*model.File, error) {
	return s.authorizedFile(ctx, actorID, fileID, CapabilityShareView)
}

func (s *fileService) Download(ctx context.Context, actorID, fileID string) (*FileContent, error) {
	return s.fetch(ctx, actorID, fileID, model.ActionDownload)
}

func (s *fileService) Preview(ctx context.Context, actorID, fileID string) (*FileContent, error) {
	return s.fetch(ctx, actorID, fileID, model.ActionPreview)
}

func (s *fileService) fetch(ctx context.Context, actorID, fileID, action string) (*FileContent, error) {
	f, err := s.authorizedFile(ctx, actorID, fileID, CapabilityShareView)
	if err != nil {
		return nil, err
	}

	obj, _, err := s.store.Get(ctx, f.StorageKey)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("fetch blob: %w", err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, fmt.Errorf("read blob: %w", err)
	}

	if f.IsEncrypted {
		if s.codec == nil {
			return nil, fmt.Errorf("%w: no decryption key configured", cryptox.ErrCipher)
		}
		// A decrypt failure is surfaced as such; ciphertext is never
		// served in its place.
		data, err = s.codec.Decrypt(data)
		if err != nil {
			return nil, err
		}
	}

	s.activity.Record(ctx, actorID, action, &f.ID, nil)
	return &FileContent{
		Name:        f.Name,
		ContentType: f.ContentType,
		Size:        int64(len(data)),
		Data:        data,
	}, nil
}

func (s *fileService) Trash(ctx context.Context, actorID, fileID string) error {
	f, err := s.authorizedFile(ctx, actorID, fileID, CapabilityOwner)
	if err != nil {
		return err
	}
	if f.IsTrashed {
		return fmt.Errorf("%w: file is already in trash", ErrConflict)
	}
	if err := s.files.SetTrashed(ctx, fileID, true); err != nil {
		return fmt.Errorf("trash file: %w", err)
	}
	s.activity.Record(ctx, actorID, model.ActionTrash, &fileID, nil)
	return nil
}

func (s *fileService) Restore(ctx context.Context, actorID, fileID string) error {
	f, err := s.authorizedFile(ctx, actorID, fileID, CapabilityOwner)
	if err != nil {
		return err
	}
	if !f.IsTrashed {
		return fmt.Errorf("%w: file is not in trash", ErrConflict)
	}
	if err := s.files.SetTrashed(ctx, fileID, false); err != nil {
		return fmt.Errorf("restore file: %w", err)
	}
	s.activity.Record(ctx, actorID, model.ActionRestore, &fileID, nil)
	return nil
}

func (s *fileService) PermanentDelete(ctx context.Context, actorID, fileID string) error {
	f, err := s.authorizedFile(ctx, actorID, fileID, CapabilityOwner)
	if err != nil {
		return err
	}
	if !f.IsTrashed {
		return fmt.Errorf("%w: only trashed files can be permanently deleted", ErrConflict)
	}

	clamped, err := s.users.ReleaseStorage(ctx, f.OwnerID, f.Size)
	if err != nil {
		return fmt.Errorf("release quota: %w", err)
	}
	if clamped {
		logWarn("storage_ledger_clamped", map[string]any{"user_id": f.OwnerID, "file_id": f.ID})
	}

	// A missing blob is tolerated: the delete is idempotent at the store.
	if err := s.store.Delete(ctx, f.StorageKey); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		logWarn("blob_delete_failed", map[string]any{"storage_key": f.StorageKey, "error": err.Error()})
	}

	if err := s.files.Delete(ctx, fileID); err != nil {
		return fmt.Errorf("delete file record: %w", err)
	}

	// The record is gone; the audit entry carries no file reference.
	s.activity.Record(ctx, actorID, model.ActionPermanentDelete, nil, nil)
	return nil
}

func (s *fileService) Rename(ctx context.Context, actorID, fileID, name string) error {
	name, err := validateName(name)
	if err != nil {
		return err
	}
	if _, err := s.authorizedFile(ctx, actorID, fileID, CapabilityOwner); err != nil {
		return err
	}
	if err := s.files.Rename(ctx, fileID, name); err != nil {
		return fmt.Errorf("rename file: %w", err)
	}
	s.activity.Record(ctx, actorID, model.ActionRename, &fileID, nil)
	return nil
}

func (s *fileService) ToggleStar(ctx context.Context, actorID, fileID string) (bool, error) {
	f, err := s.authorizedFile(ctx, actorID, fileID, CapabilityOwner)
	if err != nil {
		return false, err
	}
	starred := !f.IsStarred
	if err := s.files.SetStarred(ctx, fileID, starred); err != nil {
		return false, fmt.Errorf("star file: %w", err)
	}
	action := model.ActionStar
	if !starred {
		action = model.ActionUnstar
	}
	s.activity.Record(ctx, actorID, action, &fileID, nil)
	return starred, nil
}

func (s *fileService) Move(ctx context.Context, actorID, fileID, folderID string) error {
	if _, err := s.authorizedFile(ctx, actorID, fileID, CapabilityOwner); err != nil {
		return err
	}

	var target *string
	if folderID != "" {
		folder, err := s.folders.FindByID(ctx, folderID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrNotFound
			}
			return fmt.Errorf("find folder: %w", err)
		}
		if folder.OwnerID != actorID {
			return ErrForbidden
		}
		target = &folder.ID
	}

	if err := s.files.SetFolder(ctx, fileID, target); err != nil {
		return fmt.Errorf("move file: %w", err)
	}
	s.activity.Record(ctx, actorID, model.ActionMove, &fileID, target)
	return nil
}

func (s *fileService) ListTrash(ctx context.Context, actorID string) ([]model.File, error) {
	return s.files.ListTrashed(ctx, actorID)
}

func (s *fileService) ListStarred(ctx context.Context, actorID string) ([]model.File, error) {
	return s.files.ListStarred(ctx, actorID)
}

func (s *fileService) ListRecent(ctx context.Context, actorID string, limit int) ([]model.File, error) {
	if limit <= 0 {
		limit = 5
	}
	return s.files.ListRecent(ctx, actorID, limit)
}
