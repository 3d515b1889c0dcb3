package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang-options-monitor/internal/entity"
	"golang-options-monitor/internal/monitor/dto"
	"golang-options-monitor/pkg/common"

	"gorm.io/gorm"
)

// OptionPositionRepository defines the interface for position data operations.
type OptionPositionRepository interface {
	Create(ctx context.Context, position *entity.OptionPosition) error
	FindByID(ctx context.Context, id uint) (*entity.OptionPosition, error)
	Find(ctx context.Context, param dto.GetPositionsParam) ([]entity.OptionPosition, error)
	FindOpen(ctx context.Context, accountID uint, assetID *uint) ([]entity.OptionPosition, error)
	Update(ctx context.Context, position *entity.OptionPosition) error
	Roll(ctx context.Context, current *entity.OptionPosition, replacement *entity.OptionPosition) error
}

// NewOptionPositionRepository creates a new GORM-based position repository.
func NewOptionPositionRepository(db *gorm.DB) OptionPositionRepository {
	return &optionPositionRepository{db: db}
}

type optionPositionRepository struct {
	db *gorm.DB
}

func (r *optionPositionRepository) Create(ctx context.Context, position *entity.OptionPosition) error {
	return r.db.WithContext(ctx).Create(position).Error
}

func (r *optionPositionRepository) FindByID(ctx context.Context, id uint) (*entity.OptionPosition, error) {
	var position entity.OptionPosition
	if err := r.db.WithContext(ctx).Preload("Asset").First(&position, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("position %d: %w", id, common.ErrNotFound)
		}
		return nil, err
	}
	return &position, nil
}

func (r *optionPositionRepository) Find(ctx context.Context, param dto.GetPositionsParam) ([]entity.OptionPosition, error) {
	var positions []entity.OptionPosition

	qFilter := []string{}
	qFilterParam := []interface{}{}

	if param.AccountID != nil {
		qFilter = append(qFilter, "option_positions.account_id = ?")
		qFilterParam = append(qFilterParam, *param.AccountID)
	}
	if param.AssetID != nil {
		qFilter = append(qFilter, "option_positions.asset_id = ?")
		qFilterParam = append(qFilterParam, *param.AssetID)
	}
	if param.Status != nil {
		qFilter = append(qFilter, "option_positions.status = ?")
		qFilterParam = append(qFilterParam, *param.Status)
	}

	q := r.db.WithContext(ctx).Preload("Asset")
	if param.AssetTicker != nil {
		q = q.Joins("JOIN assets ON assets.id = option_positions.asset_id").
			Where("assets.ticker = ?", *param.AssetTicker)
	}
	if len(qFilter) > 0 {
		q = q.Where(strings.Join(qFilter, " AND "), qFilterParam...)
	}

	if err := q.Order("option_positions.expiration ASC").Find(&positions).Error; err != nil {
		return nil, err
	}
	return positions, nil
}

// FindOpen returns the account's OPEN positions ordered by expiration
// ascending, so earlier-expiring positions are evaluated and alerted first.
func (r *optionPositionRepository) FindOpen(ctx context.Context, accountID uint, assetID *uint) ([]entity.OptionPosition, error) {
	var positions []entity.OptionPosition
	q := r.db.WithContext(ctx).Preload("Asset").
		Where("account_id = ? AND status = ?", accountID, entity.PositionStatusOpen)
	if assetID != nil {
		q = q.Where("asset_id = ?", *assetID)
	}
	if err := q.Order("expiration ASC").Find(&positions).Error; err != nil {
		return nil, err
	}
	return positions, nil
}

func (r *optionPositionRepository) Update(ctx context.Context, position *entity.OptionPosition) error {
	return r.db.WithContext(ctx).Save(position).Error
}

// Roll closes the current position and opens its replacement in one
// transaction, linking the two.
func (r *optionPositionRepository) Roll(ctx context.Context, current *entity.OptionPosition, replacement *entity.OptionPosition) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(replacement).Error; err != nil {
			return err
		}
		current.RolledToID = &replacement.ID
		return tx.Save(current).Error
	})
}
