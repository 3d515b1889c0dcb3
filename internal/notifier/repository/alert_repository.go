package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang-options-monitor/internal/entity"
	"golang-options-monitor/pkg/common"

	"gorm.io/gorm"
)

// AlertRepository exposes the alert reads and transitions the dispatcher
// needs.
type AlertRepository interface {
	FindByID(ctx context.Context, id uint) (*entity.Alert, error)
	FindPendingOlderThan(ctx context.Context, age time.Duration, limit int) ([]entity.Alert, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
}

// NewAlertRepository creates a new GORM-based alert repository.
func NewAlertRepository(db *gorm.DB) AlertRepository {
	return &alertRepository{db: db}
}

type alertRepository struct {
	db *gorm.DB
}

func (r *alertRepository) FindByID(ctx context.Context, id uint) (*entity.Alert, error) {
	var alert entity.Alert
	if err := r.db.WithContext(ctx).First(&alert, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("alert %d: %w", id, common.ErrNotFound)
		}
		return nil, err
	}
	return &alert, nil
}

// FindPendingOlderThan returns PENDING alerts whose creation predates the
// given age. These are alerts whose stream entry was lost or never written.
func (r *alertRepository) FindPendingOlderThan(ctx context.Context, age time.Duration, limit int) ([]entity.Alert, error) {
	var alerts []entity.Alert
	cutoff := time.Now().UTC().Add(-age)
	q := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", entity.AlertStatusPending, cutoff).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *alertRepository) UpdateStatus(ctx context.Context, id uint, status string) error {
	res := r.db.WithContext(ctx).Model(&entity.Alert{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("alert %d: %w", id, common.ErrNotFound)
	}
	return nil
}
