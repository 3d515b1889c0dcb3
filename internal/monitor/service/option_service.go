package service

import (
	"context"
	"fmt"
	"time"

	"golang-options-monitor/internal/entity"
	"golang-options-monitor/internal/monitor/dto"
	"golang-options-monitor/internal/monitor/repository"
	"golang-options-monitor/pkg/common"
	"golang-options-monitor/pkg/logger"
	"golang-options-monitor/pkg/utils"
)

// OptionService is the position registry: it owns open/close/roll mutations
// and the close cascade over the position's alerts.
type OptionService interface {
	Open(ctx context.Context, req *dto.CreatePositionRequest) (*entity.OptionPosition, error)
	Close(ctx context.Context, positionID uint, closingPremium float64) (*entity.OptionPosition, error)
	Roll(ctx context.Context, positionID uint, req *dto.RollPositionRequest) (*entity.OptionPosition, error)
	Get(ctx context.Context, positionID uint) (*entity.OptionPosition, error)
	List(ctx context.Context, param dto.GetPositionsParam) ([]entity.OptionPosition, error)
	ListOpen(ctx context.Context, accountID uint, assetID *uint) ([]entity.OptionPosition, error)
}

// NewOptionService creates the position registry service.
func NewOptionService(
	positionRepo repository.OptionPositionRepository,
	assetRepo repository.AssetRepository,
	accountRepo repository.AccountRepository,
	alertService AlertService,
	log *logger.Logger,
) OptionService {
	return &optionService{
		positionRepo: positionRepo,
		assetRepo:    assetRepo,
		accountRepo:  accountRepo,
		alertService: alertService,
		logger:       log,
	}
}

type optionService struct {
	positionRepo repository.OptionPositionRepository
	assetRepo    repository.AssetRepository
	accountRepo  repository.AccountRepository
	alertService AlertService
	logger       *logger.Logger
}

func (s *optionService) Open(ctx context.Context, req *dto.CreatePositionRequest) (*entity.OptionPosition, error) {
	if req.Side != entity.SideCall && req.Side != entity.SidePut {
		return nil, fmt.Errorf("side must be CALL or PUT: %w", common.ErrValidation)
	}
	if req.Strike <= 0 {
		return nil, fmt.Errorf("strike must be positive: %w", common.ErrValidation)
	}
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive: %w", common.ErrValidation)
	}
	if req.AvgPremium < 0 {
		return nil, fmt.Errorf("avg_premium must be non-negative: %w", common.ErrValidation)
	}

	expiration, err := time.Parse("2006-01-02", req.Expiration)
	if err != nil {
		return nil, fmt.Errorf("invalid expiration %q: %w", req.Expiration, common.ErrValidation)
	}
	if !expiration.After(utils.TruncateToDate(time.Now().UTC())) {
		return nil, fmt.Errorf("expiration must be in the future: %w", common.ErrValidation)
	}

	if _, err := s.accountRepo.FindByID(ctx, req.AccountID); err != nil {
		return nil, err
	}
	asset, err := s.assetRepo.FindByID(ctx, req.AssetID)
	if err != nil {
		return nil, err
	}
	if asset.AccountID != req.AccountID {
		return nil, fmt.Errorf("asset %d does not belong to account %d: %w", req.AssetID, req.AccountID, common.ErrValidation)
	}

	strategy := req.Strategy
	if strategy == "" {
		strategy = entity.StrategyOther
	}

	position := &entity.OptionPosition{
		AccountID:  req.AccountID,
		AssetID:    req.AssetID,
		Side:       req.Side,
		Strategy:   strategy,
		Strike:     req.Strike,
		Expiration: expiration,
		Quantity:   req.Quantity,
		AvgPremium: req.AvgPremium,
		Status:     entity.PositionStatusOpen,
		Notes:      req.Notes,
	}
	if err := s.positionRepo.Create(ctx, position); err != nil {
		return nil, err
	}

	s.logger.Info("Position opened",
		logger.UintField("position_id", position.ID),
		logger.StringField("ticker", asset.Ticker),
		logger.Float64Field("strike", position.Strike))
	return position, nil
}

// Close transitions the position to CLOSED and expires its non-terminal
// alerts. A double-close is an error, not an idempotent no-op.
func (s *optionService) Close(ctx context.Context, positionID uint, closingPremium float64) (*entity.OptionPosition, error) {
	position, err := s.positionRepo.FindByID(ctx, positionID)
	if err != nil {
		return nil, err
	}
	if !position.IsOpen() {
		return nil, fmt.Errorf("position %d: %w", positionID, common.ErrAlreadyClosed)
	}

	now := time.Now().UTC()
	position.Status = entity.PositionStatusClosed
	position.ClosingPremium = &closingPremium
	position.ClosedAt = &now
	if err := s.positionRepo.Update(ctx, position); err != nil {
		return nil, err
	}

	expired, err := s.alertService.ExpireForPosition(ctx, positionID)
	if err != nil {
		s.logger.Error("Failed to expire alerts for closed position",
			logger.UintField("position_id", positionID), logger.ErrorField(err))
	}

	s.logger.Info("Position closed",
		logger.UintField("position_id", positionID),
		logger.IntField("alerts_expired", expired))
	return position, nil
}

// Roll closes the current position and opens the replacement contract in one
// transaction, then expires the old position's alerts.
func (s *optionService) Roll(ctx context.Context, positionID uint, req *dto.RollPositionRequest) (*entity.OptionPosition, error) {
	position, err := s.positionRepo.FindByID(ctx, positionID)
	if err != nil {
		return nil, err
	}
	if !position.IsOpen() {
		return nil, fmt.Errorf("position %d: %w", positionID, common.ErrAlreadyClosed)
	}

	if req.Strike <= 0 {
		return nil, fmt.Errorf("strike must be positive: %w", common.ErrValidation)
	}
	expiration, err := time.Parse("2006-01-02", req.Expiration)
	if err != nil {
		return nil, fmt.Errorf("invalid expiration %q: %w", req.Expiration, common.ErrValidation)
	}
	if !expiration.After(position.Expiration) {
		return nil, fmt.Errorf("roll must move expiration forward: %w", common.ErrInvalidCandidate)
	}

	now := time.Now().UTC()
	position.Status = entity.PositionStatusClosed
	position.ClosingPremium = &req.ClosingPremium
	position.ClosedAt = &now

	netCredit := (req.Premium - position.AvgPremium) * float64(position.Quantity) * 100
	notes := fmt.Sprintf("Rolled from position %d, net credit %.2f", position.ID, netCredit)
	if req.Notes != "" {
		notes = req.Notes + "; " + notes
	}

	replacement := &entity.OptionPosition{
		AccountID:  position.AccountID,
		AssetID:    position.AssetID,
		Side:       position.Side,
		Strategy:   position.Strategy,
		Strike:     req.Strike,
		Expiration: expiration,
		Quantity:   position.Quantity,
		AvgPremium: req.Premium,
		Status:     entity.PositionStatusOpen,
		Notes:      notes,
	}

	if err := s.positionRepo.Roll(ctx, position, replacement); err != nil {
		return nil, err
	}

	if _, err := s.alertService.ExpireForPosition(ctx, positionID); err != nil {
		s.logger.Error("Failed to expire alerts for rolled position",
			logger.UintField("position_id", positionID), logger.ErrorField(err))
	}

	s.logger.Info("Position rolled",
		logger.UintField("from_position_id", position.ID),
		logger.UintField("to_position_id", replacement.ID),
		logger.Float64Field("net_credit", netCredit))
	return replacement, nil
}

func (s *optionService) Get(ctx context.Context, positionID uint) (*entity.OptionPosition, error) {
	return s.positionRepo.FindByID(ctx, positionID)
}

func (s *optionService) List(ctx context.Context, param dto.GetPositionsParam) ([]entity.OptionPosition, error) {
	return s.positionRepo.Find(ctx, param)
}

func (s *optionService) ListOpen(ctx context.Context, accountID uint, assetID *uint) ([]entity.OptionPosition, error) {
	return s.positionRepo.FindOpen(ctx, accountID, assetID)
}
