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

// AlertRepository defines the interface for alert data operations.
type AlertRepository interface {
	Create(ctx context.Context, alert *entity.Alert) error
	FindByID(ctx context.Context, id uint) (*entity.Alert, error)
	FindOpenForDay(ctx context.Context, ruleID *uint, positionID uint, reason string, day time.Time) (*entity.Alert, error)
	FindByStatus(ctx context.Context, status string, limit int) ([]entity.Alert, error)
	FindHistory(ctx context.Context, accountID *uint, limit int) ([]entity.Alert, error)
	FindNonTerminalForPosition(ctx context.Context, positionID uint) ([]entity.Alert, error)
	FindNonTerminalForRule(ctx context.Context, ruleID uint, positionID uint) ([]entity.Alert, error)
	UpdateStatus(ctx context.Context, id uint, status string) error
}

// NewAlertRepository creates a new GORM-based alert repository.
func NewAlertRepository(db *gorm.DB) AlertRepository {
	return &alertRepository{db: db}
}

type alertRepository struct {
	db *gorm.DB
}

func (r *alertRepository) Create(ctx context.Context, alert *entity.Alert) error {
	return r.db.WithContext(ctx).Create(alert).Error
}

func (r *alertRepository) FindByID(ctx context.Context, id uint) (*entity.Alert, error) {
	var alert entity.Alert
	if err := r.db.WithContext(ctx).Preload("Attempts").First(&alert, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("alert %d: %w", id, common.ErrNotFound)
		}
		return nil, err
	}
	return &alert, nil
}

// FindOpenForDay returns the PENDING or SENT alert for the given
// (rule, position, reason, calendar day), or ErrNotFound. This is the dedup
// lookup; it must run under the account's evaluation lock.
func (r *alertRepository) FindOpenForDay(ctx context.Context, ruleID *uint, positionID uint, reason string, day time.Time) (*entity.Alert, error) {
	var alert entity.Alert
	q := r.db.WithContext(ctx).
		Where("position_id = ? AND reason = ? AND trigger_day = ?", positionID, reason, day).
		Where("status IN ?", []string{entity.AlertStatusPending, entity.AlertStatusSent})
	if ruleID != nil {
		q = q.Where("rule_id = ?", *ruleID)
	} else {
		q = q.Where("rule_id IS NULL")
	}
	if err := q.First(&alert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return &alert, nil
}

func (r *alertRepository) FindByStatus(ctx context.Context, status string, limit int) ([]entity.Alert, error) {
	var alerts []entity.Alert
	q := r.db.WithContext(ctx).Where("status = ?", status).Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *alertRepository) FindHistory(ctx context.Context, accountID *uint, limit int) ([]entity.Alert, error) {
	var alerts []entity.Alert
	q := r.db.WithContext(ctx).Preload("Attempts").Order("created_at DESC")
	if accountID != nil {
		q = q.Where("account_id = ?", *accountID)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&alerts).Error; err != nil {
		return nil, err
	}
	return alerts, nil
}

func (r *alertRepository) FindNonTerminalForPosition(ctx context.Context, positionID uint) ([]entity.Alert, error) {
	var alerts []entity.Alert
	err := r.db.WithContext(ctx).
		Where("position_id = ? AND status IN ?", positionID,
			[]string{entity.AlertStatusPending, entity.AlertStatusSent}).
		Find(&alerts).Error
	if err != nil {
		return nil, err
	}
	return alerts, nil
}

// FindNonTerminalForRule returns the PENDING or SENT alerts the rule holds
// open for the position, across reasons and trigger days.
func (r *alertRepository) FindNonTerminalForRule(ctx context.Context, ruleID uint, positionID uint) ([]entity.Alert, error) {
	var alerts []entity.Alert
	err := r.db.WithContext(ctx).
		Where("rule_id = ? AND position_id = ? AND status IN ?", ruleID, positionID,
			[]string{entity.AlertStatusPending, entity.AlertStatusSent}).
		Find(&alerts).Error
	if err != nil {
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
