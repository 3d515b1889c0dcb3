package service

import (
	"context"
	"fmt"
	"strings"

	"golang-options-monitor/internal/entity"
	"golang-options-monitor/internal/monitor/dto"
	"golang-options-monitor/internal/monitor/repository"
	"golang-options-monitor/pkg/common"
	"golang-options-monitor/pkg/logger"
)

// AssetService manages underlying assets.
type AssetService interface {
	Create(ctx context.Context, req *dto.CreateAssetRequest) (*entity.Asset, error)
	List(ctx context.Context, accountID *uint) ([]entity.Asset, error)
}

// NewAssetService creates an asset service.
func NewAssetService(assetRepo repository.AssetRepository, accountRepo repository.AccountRepository, log *logger.Logger) AssetService {
	return &assetService{assetRepo: assetRepo, accountRepo: accountRepo, logger: log}
}

type assetService struct {
	assetRepo   repository.AssetRepository
	accountRepo repository.AccountRepository
	logger      *logger.Logger
}

func (s *assetService) Create(ctx context.Context, req *dto.CreateAssetRequest) (*entity.Asset, error) {
	ticker := strings.ToUpper(strings.TrimSpace(req.Ticker))
	if ticker == "" {
		return nil, fmt.Errorf("ticker is required: %w", common.ErrValidation)
	}
	if _, err := s.accountRepo.FindByID(ctx, req.AccountID); err != nil {
		return nil, err
	}

	asset := &entity.Asset{
		AccountID: req.AccountID,
		Ticker:    ticker,
		Market:    req.Market,
	}
	if err := s.assetRepo.Create(ctx, asset); err != nil {
		return nil, err
	}
	s.logger.Info("Asset created",
		logger.UintField("asset_id", asset.ID),
		logger.StringField("ticker", ticker))
	return asset, nil
}

func (s *assetService) List(ctx context.Context, accountID *uint) ([]entity.Asset, error) {
	return s.assetRepo.FindAll(ctx, accountID)
}
