package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/lukewarren/accountd/internal/models"
	"github.com/lukewarren/accountd/internal/tracking"
	"github.com/lukewarren/accountd/pkg/logger"
)

// ActivityService records and lists audit entries enriched with request
// metadata. Recording is strictly best-effort: a failed write is logged and
// swallowed so it can never abort the operation it is attached to.
type ActivityService struct {
	db      *gorm.DB
	tracker *tracking.Tracker
	log     *zap.Logger
}

// NewActivityService constructs an ActivityService.
func NewActivityService(db *gorm.DB, tracker *tracking.Tracker) (*ActivityService, error) {
	if db == nil {
		return nil, errors.New("activity service: db is required")
	}
	if tracker == nil {
		tracker = tracking.NewTracker(nil)
	}
	return &ActivityService{
		db:      db,
		tracker: tracker,
		log:     logger.WithModule("activity"),
	}, nil
}

// Record derives request metadata, persists an entry, and returns it. The
// absent return value signals failure; callers must not branch on it.
func (s *ActivityService) Record(ctx context.Context, userID, action, description string, headers tracking.HeaderSource) *models.ActivityLog {
	ctx = ensureContext(ctx)

	meta := s.tracker.TrackRequest(ctx, headers)

	entry := models.ActivityLog{
		UserID:      userID,
		Action:      action,
		Description: description,
		IPAddress:   meta.IPAddress,
		Location:    meta.Location,
		Device:      meta.Device,
	}
	if headers != nil {
		if ua := headers.Get("user-agent"); ua != "" {
			entry.Metadata = datatypes.JSON(fmt.Sprintf(`{"user_agent":%q}`, ua))
		}
	}

	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		s.log.Error("failed to record activity",
			zap.String("action", action),
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return nil
	}

	s.log.Info("activity logged",
		zap.String("action", action),
		zap.String("device", entry.Device),
		zap.String("location", entry.Location),
	)
	return &entry
}

// List returns all activity entries, newest first.
func (s *ActivityService) List(ctx context.Context) ([]models.ActivityLog, error) {
	ctx = ensureContext(ctx)

	var entries []models.ActivityLog
	if err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("activity service: list entries: %w", err)
	}
	return entries, nil
}

// DeleteOlderThan removes entries past the retention window. It exists for
// the maintenance sweeper; the recorder itself never mutates entries.
func (s *ActivityService) DeleteOlderThan(ctx context.Context, retentionDays int) (int64, error) {
	ctx = ensureContext(ctx)

	if retentionDays <= 0 {
		return 0, errors.New("activity service: retentionDays must be positive")
	}

	cutoff := nowFunc().AddDate(0, 0, -retentionDays)
	result := s.db.WithContext(ctx).Where("created_at < ?", cutoff).Delete(&models.ActivityLog{})
	if result.Error != nil {
		return 0, fmt.Errorf("activity service: cleanup entries: %w", result.Error)
	}
	return result.RowsAffected, nil
}
