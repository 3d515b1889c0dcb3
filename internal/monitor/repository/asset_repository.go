package repository

import (
	"context"
	"errors"
	"fmt"

	"golang-options-monitor/internal/entity"
	"golang-options-monitor/pkg/common"

	"gorm.io/gorm"
)

// AssetRepository defines the interface for asset data operations.
type AssetRepository interface {
	Create(ctx context.Context, asset *entity.Asset) error
	FindByID(ctx context.Context, id uint) (*entity.Asset, error)
	FindAll(ctx context.Context, accountID *uint) ([]entity.Asset, error)
	FindByTicker(ctx context.Context, ticker string) ([]entity.Asset, error)
}

// NewAssetRepository creates a new GORM-based asset repository.
func NewAssetRepository(db *gorm.DB) AssetRepository {
	return &assetRepository{db: db}
}

type assetRepository struct {
	db *gorm.DB
}

func (r *assetRepository) Create(ctx context.Context, asset *entity.Asset) error {
	return r.db.WithContext(ctx).Create(asset).Error
}

func (r *assetRepository) FindByID(ctx context.Context, id uint) (*entity.Asset, error) {
	var asset entity.Asset
	if err := r.db.WithContext(ctx).First(&asset, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("asset %d: %w", id, common.ErrNotFound)
		}
		return nil, err
	}
	return &asset, nil
}

func (r *assetRepository) FindAll(ctx context.Context, accountID *uint) ([]entity.Asset, error) {
	var assets []entity.Asset
	q := r.db.WithContext(ctx)
	if accountID != nil {
		q = q.Where("account_id = ?", *accountID)
	}
	if err := q.Find(&assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}

func (r *assetRepository) FindByTicker(ctx context.Context, ticker string) ([]entity.Asset, error) {
	var assets []entity.Asset
	if err := r.db.WithContext(ctx).Where("ticker = ?", ticker).Find(&assets).Error; err != nil {
		return nil, err
	}
	return assets, nil
}
