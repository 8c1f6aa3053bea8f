package services

import (
	"context"
	"log/slog"

	"github.com/crownvote/pageant-backend/internal/models"
	"github.com/crownvote/pageant-backend/internal/repositories"
)

// ActivityLogService records and lists administrative actions
type ActivityLogService struct {
	activityRepo repositories.ActivityLogRepository
}

// NewActivityLogService creates a new ActivityLogService
func NewActivityLogService(activityRepo repositories.ActivityLogRepository) *ActivityLogService {
	return &ActivityLogService{activityRepo: activityRepo}
}

// Record appends an activity entry. Best-effort: a failed audit write is
// logged but never fails the action it describes.
func (s *ActivityLogService) Record(ctx context.Context, actor, action, subject string, metadata map[string]any) {
	entry := &models.ActivityLog{
		Actor:    actor,
		Action:   action,
		Subject:  subject,
		Metadata: metadata,
	}
	if err := s.activityRepo.Create(ctx, entry); err != nil {
		slog.Error("failed to record activity", "action", action, "error", err)
	}
}

// List returns activity entries with pagination, newest first
func (s *ActivityLogService) List(ctx context.Context, page, limit int) ([]*models.ActivityLog, error) {
	return s.activityRepo.FindAll(ctx, page, limit)
}

// Count returns the total number of activity entries
func (s *ActivityLogService) Count(ctx context.Context) (int64, error) {
	return s.activityRepo.Count(ctx)
}
