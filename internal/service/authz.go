package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"filevault/internal/model"
	"filevault/internal/repository"
)

// Capability is a named permission level checked before every file operation.
type Capability int

const (
	// CapabilityOwner gates every mutating operation: upload placement,
	// rename, star, trash, restore, permanent delete, share, unshare, move.
	CapabilityOwner Capability = iota

	// CapabilityShareView gates read access: download and preview. The
	// owner or any grantee (view or edit) passes.
	CapabilityShareView

	// CapabilityShareEdit gates in-place modification. No current operation
	// requires it; a grant with edit permission satisfies it when one does.
	CapabilityShareEdit
)

// authorizer is the single access-control decision point. Every file
// operation calls Authorize before touching any state.
type authorizer struct {
	shares repository.ShareRepository
}

// Authorize decides whether the actor may perform an operation requiring
// the given capability on the file. A denial is ErrForbidden, never a
// silent no-op.
func (a *authorizer) Authorize(ctx context.Context, actorID string, file *model.File, capability Capability) error {
	if file.OwnerID == actorID {
		return nil
	}
	if capability == CapabilityOwner {
		return ErrForbidden
	}

	// Grants never apply to trashed files: shared listings exclude them and
	// a trashed file cannot be re-shared.
	if file.IsTrashed {
		return ErrForbidden
	}

	grant, err := a.shares.Find(ctx, file.ID, actorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrForbidden
		}
		return fmt.Errorf("find share grant: %w", err)
	}

	switch capability {
	case CapabilityShareView:
		return nil
	case CapabilityShareEdit:
		if grant.Permission == model.PermissionEdit {
			return nil
		}
		return ErrForbidden
	default:
		return ErrForbidden
	}
}
