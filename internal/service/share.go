package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"filevault/internal/model"
	"filevault/internal/repository"
)

// SharedEntry pairs a grant with the grantee for share-management views.
type SharedEntry struct {
	Username   string           `json:"username"`
	Email      string           `json:"email"`
	UserID     string           `json:"user_id"`
	Permission model.Permission `json:"permission"`
}

// ShareService manages share grants on files. Granting and revoking are
// owner-only; a grantee may remove itself from a share.
type ShareService interface {
	// Share grants the user with the given email access to the file.
	// Re-sharing the same pair updates the permission instead of erroring.
	Share(ctx context.Context, actorID, fileID, granteeEmail string, permission model.Permission) (*model.ShareGrant, error)

	// Unshare revokes a grantee's access. Owner-only.
	Unshare(ctx context.Context, actorID, fileID, granteeID string) error

	// RemoveShared lets a grantee drop a file from its own shared view.
	RemoveShared(ctx context.Context, actorID, fileID string) error

	// ListGrants returns who a file is shared with. Owner-only.
	ListGrants(ctx context.Context, actorID, fileID string) ([]SharedEntry, error)

	// SharedWithMe returns the non-trashed files shared with the actor.
	SharedWithMe(ctx context.Context, actorID string) ([]model.File, error)
}

type shareService struct {
	shares   repository.ShareRepository
	files    repository.FileRepository
	users    repository.UserRepository
	authz    *authorizer
	activity ActivityService
}

// NewShareService constructs a new ShareService.
func NewShareService(
	shares repository.ShareRepository,
	files repository.FileRepository,
	users repository.UserRepository,
	activity ActivityService,
) ShareService {
	return &shareService{
		shares:   shares,
		files:    files,
		users:    users,
		authz:    &authorizer{shares: shares},
		activity: activity,
	}
}

func (s *shareService) ownedFile(ctx context.Context, actorID, fileID string) (*model.File, error) {
	f, err := s.files.FindByID(ctx, fileID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find file: %w", err)
	}
	if err := s.authz.Authorize(ctx, actorID, f, CapabilityOwner); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *shareService) Share(ctx context.Context, actorID, fileID, granteeEmail string, permission model.Permission) (*model.ShareGrant, error) {
	granteeEmail = strings.TrimSpace(granteeEmail)
	if granteeEmail == "" {
		return nil, fmt.Errorf("%w: grantee email is required", ErrValidation)
	}
	if !permission.Valid() {
		return nil, fmt.Errorf("%w: unknown permission %q", ErrValidation, permission)
	}

	f, err := s.ownedFile(ctx, actorID, fileID)
	if err != nil {
		return nil, err
	}
	if f.IsTrashed {
		return nil, fmt.Errorf("%w: trashed files cannot be shared", ErrValidation)
	}

	grantee, err := s.users.FindByEmail(ctx, granteeEmail)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: no user with that email", ErrNotFound)
		}
		return nil, fmt.Errorf("find grantee: %w", err)
	}
	if grantee.ID == f.OwnerID {
		return nil, fmt.Errorf("%w: cannot share a file with its owner", ErrConflict)
	}

	grant := &model.ShareGrant{
		FileID:     f.ID,
		UserID:     grantee.ID,
		Permission: permission,
		SharedOn:   time.Now().UTC(),
	}
	if err := s.shares.Upsert(ctx, grant); err != nil {
		return nil, fmt.Errorf("save share grant: %w", err)
	}

	s.activity.Record(ctx, actorID, model.ActionShare, &f.ID, nil)
	return grant, nil
}

func (s *shareService) Unshare(ctx context.Context, actorID, fileID, granteeID string) error {
	f, err := s.ownedFile(ctx, actorID, fileID)
	if err != nil {
		return err
	}
	if granteeID == "" {
		return fmt.Errorf("%w: grantee id is required", ErrValidation)
	}
	if err := s.shares.Delete(ctx, f.ID, granteeID); err != nil {
		return fmt.Errorf("delete share grant: %w", err)
	}
	s.activity.Record(ctx, actorID, model.ActionUnshare, &f.ID, nil)
	return nil
}

func (s *shareService) RemoveShared(ctx context.Context, actorID, fileID string) error {
	// Self-removal only touches the actor's own grant; no ownership check.
	if _, err := s.shares.Find(ctx, fileID, actorID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("find share grant: %w", err)
	}
	if err := s.shares.Delete(ctx, fileID, actorID); err != nil {
		return fmt.Errorf("delete share grant: %w", err)
	}
	s.activity.Record(ctx, actorID, model.ActionRemoveShared, &fileID, nil)
	return nil
}

func (s *shareService) ListGrants(ctx context.Context, actorID, fileID string) ([]SharedEntry, error) {
	f, err := s.ownedFile(ctx, actorID, fileID)
	if err != nil {
		return nil, err
	}
	grants, err := s.shares.ListByFile(ctx, f.ID)
	if err != nil {
		return nil, fmt.Errorf("list share grants: %w", err)
	}

	entries := make([]SharedEntry, 0, len(grants))
	for _, g := range grants {
		grantee, err := s.users.FindByID(ctx, g.UserID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return nil, fmt.Errorf("find grantee: %w", err)
		}
		entries = append(entries, SharedEntry{
			Username:   grantee.Username,
			Email:      grantee.Email,
			UserID:     grantee.ID,
			Permission: g.Permission,
		})
	}
	return entries, nil
}

func (s *shareService) SharedWithMe(ctx context.Context, actorID string) ([]model.File, error) {
	return s.shares.ListSharedWith(ctx, actorID)
}
