package repository

import (
	"context"

	"golang-options-monitor/internal/entity"

	"gorm.io/gorm"
)

// NotificationAttemptRepository records delivery attempts for the audit trail.
type NotificationAttemptRepository interface {
	Create(ctx context.Context, attempt *entity.NotificationAttempt) error
}

// NewNotificationAttemptRepository creates a new GORM-based attempt repository.
func NewNotificationAttemptRepository(db *gorm.DB) NotificationAttemptRepository {
	return &notificationAttemptRepository{db: db}
}

type notificationAttemptRepository struct {
	db *gorm.DB
}

func (r *notificationAttemptRepository) Create(ctx context.Context, attempt *entity.NotificationAttempt) error {
	return r.db.WithContext(ctx).Create(attempt).Error
}
