package service

import (
	"context"
	"encoding/json"
	"fmt"

	"golang-options-monitor/internal/entity"
	"golang-options-monitor/internal/monitor/dto"
	"golang-options-monitor/internal/monitor/repository"
	"golang-options-monitor/pkg/common"
	"golang-options-monitor/pkg/logger"

	"gorm.io/datatypes"
)

// RuleService manages trigger rules. Predicates are validated at construction
// time, not at evaluation time.
type RuleService interface {
	Create(ctx context.Context, req *dto.RulePayload) (*entity.Rule, error)
	Get(ctx context.Context, id uint) (*entity.Rule, error)
	List(ctx context.Context, param dto.GetRulesParam) ([]entity.Rule, error)
	Update(ctx context.Context, id uint, req *dto.RulePayload) (*entity.Rule, error)
	Toggle(ctx context.Context, id uint) (*entity.Rule, error)
	Delete(ctx context.Context, id uint) error
}

// NewRuleService creates a rule service.
func NewRuleService(ruleRepo repository.RuleRepository, accountRepo repository.AccountRepository, log *logger.Logger) RuleService {
	return &ruleService{ruleRepo: ruleRepo, accountRepo: accountRepo, logger: log}
}

type ruleService struct {
	ruleRepo    repository.RuleRepository
	accountRepo repository.AccountRepository
	logger      *logger.Logger
}

func (s *ruleService) Create(ctx context.Context, req *dto.RulePayload) (*entity.Rule, error) {
	if _, err := s.accountRepo.FindByID(ctx, req.AccountID); err != nil {
		return nil, err
	}

	rule := &entity.Rule{
		AccountID: req.AccountID,
		IsActive:  true,
	}
	applyRulePayload(rule, req)
	if err := validateRule(rule); err != nil {
		return nil, err
	}

	if err := s.ruleRepo.Create(ctx, rule); err != nil {
		return nil, err
	}
	s.logger.Info("Rule created",
		logger.UintField("rule_id", rule.ID),
		logger.UintField("account_id", rule.AccountID))
	return rule, nil
}

func (s *ruleService) Get(ctx context.Context, id uint) (*entity.Rule, error) {
	return s.ruleRepo.FindByID(ctx, id)
}

func (s *ruleService) List(ctx context.Context, param dto.GetRulesParam) ([]entity.Rule, error) {
	return s.ruleRepo.Find(ctx, param)
}

// Update applies the non-nil fields of the payload to the stored rule.
func (s *ruleService) Update(ctx context.Context, id uint, req *dto.RulePayload) (*entity.Rule, error) {
	rule, err := s.ruleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	applyRulePayload(rule, req)
	if err := validateRule(rule); err != nil {
		return nil, err
	}
	if err := s.ruleRepo.Update(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *ruleService) Toggle(ctx context.Context, id uint) (*entity.Rule, error) {
	rule, err := s.ruleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	rule.IsActive = !rule.IsActive
	if err := s.ruleRepo.Update(ctx, rule); err != nil {
		return nil, err
	}
	s.logger.Info("Rule toggled",
		logger.UintField("rule_id", rule.ID),
		logger.Field("is_active", rule.IsActive))
	return rule, nil
}

func (s *ruleService) Delete(ctx context.Context, id uint) error {
	return s.ruleRepo.Delete(ctx, id)
}

func applyRulePayload(rule *entity.Rule, req *dto.RulePayload) {
	if req.AssetTicker != nil {
		rule.AssetTicker = req.AssetTicker
	}
	if req.IsActive != nil {
		rule.IsActive = *req.IsActive
	}
	if req.DeltaThreshold != nil {
		rule.DeltaThreshold = req.DeltaThreshold
	}
	if req.DteMin != nil {
		rule.DteMin = req.DteMin
	}
	if req.DteMax != nil {
		rule.DteMax = req.DteMax
	}
	if req.TargetOtmPctLow != nil {
		rule.TargetOtmPctLow = req.TargetOtmPctLow
	}
	if req.TargetOtmPctHigh != nil {
		rule.TargetOtmPctHigh = req.TargetOtmPctHigh
	}
	if req.PremiumCloseThreshold != nil {
		rule.PremiumCloseThreshold = req.PremiumCloseThreshold
	}
	if req.SpreadThreshold != nil {
		rule.SpreadThreshold = req.SpreadThreshold
	}
	if req.MaxSpread != nil {
		rule.MaxSpread = req.MaxSpread
	}
	if req.MinVolume != nil {
		rule.MinVolume = req.MinVolume
	}
	if req.MinOI != nil {
		rule.MinOI = req.MinOI
	}
	if req.PriceToStrikeRatio != nil {
		rule.PriceToStrikeRatio = req.PriceToStrikeRatio
	}
	if req.NotifyChannels != nil {
		if raw, err := json.Marshal(req.NotifyChannels); err == nil {
			rule.NotifyChannels = datatypes.JSON(raw)
		}
	}
}

func validateRule(rule *entity.Rule) error {
	if rule.DteMin != nil && rule.DteMax != nil && *rule.DteMin > *rule.DteMax {
		return fmt.Errorf("dte_min %d greater than dte_max %d: %w", *rule.DteMin, *rule.DteMax, common.ErrValidation)
	}
	if rule.TargetOtmPctLow != nil && rule.TargetOtmPctHigh != nil && *rule.TargetOtmPctLow > *rule.TargetOtmPctHigh {
		return fmt.Errorf("target_otm_pct_low greater than target_otm_pct_high: %w", common.ErrValidation)
	}
	if rule.DeltaThreshold != nil && (*rule.DeltaThreshold < 0 || *rule.DeltaThreshold > 1) {
		return fmt.Errorf("delta_threshold must be within [0, 1]: %w", common.ErrValidation)
	}
	if rule.PremiumCloseThreshold != nil && *rule.PremiumCloseThreshold < 0 {
		return fmt.Errorf("premium_close_threshold must be non-negative: %w", common.ErrValidation)
	}
	if rule.MaxSpread != nil && *rule.MaxSpread < 0 {
		return fmt.Errorf("max_spread must be non-negative: %w", common.ErrValidation)
	}
	return nil
}
