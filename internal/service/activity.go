package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"filevault/internal/model"
	"filevault/internal/repository"
)

// ActivityService records and reads the append-only audit log.
type ActivityService interface {
	// Record appends one activity entry. A write failure is logged and
	// swallowed: audit logging must never roll back the operation that
	// succeeded before it.
	Record(ctx context.Context, actorID, action string, fileID, folderID *string)

	// Recent returns the actor's newest activity entries.
	Recent(ctx context.Context, actorID string, limit int) ([]model.Activity, error)
}

type activityService struct {
	repo repository.ActivityRepository
}

// NewActivityService constructs a new ActivityService.
func NewActivityService(repo repository.ActivityRepository) ActivityService {
	return &activityService{repo: repo}
}

func (s *activityService) Record(ctx context.Context, actorID, action string, fileID, folderID *string) {
	a := &model.Activity{
		ID:        uuid.New().String(),
		UserID:    actorID,
		Action:    action,
		FileID:    fileID,
		FolderID:  folderID,
		Timestamp: time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		logWarn("activity_write_failed", map[string]any{
			"user_id": actorID,
			"action":  action,
			"error":   err.Error(),
		})
	}
}

func (s *activityService) Recent(ctx context.Context, actorID string, limit int) ([]model.Activity, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.repo.ListRecent(ctx, actorID, limit)
}
