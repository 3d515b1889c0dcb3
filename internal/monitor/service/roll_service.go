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

// RollService exposes the roll calculator over stored positions: deterministic
// economics, chain simulation and the account-wide analysis view.
type RollService interface {
	Calculate(ctx context.Context, req *dto.RollCalculateRequest) (*dto.RollEconomicsResponse, error)
	Simulate(ctx context.Context, req *dto.RollSimulateRequest) (*dto.RollSimulateResponse, error)
	Analysis(ctx context.Context, accountID uint) ([]dto.RollAnalysisEntry, error)
}

// NewRollService creates a roll service.
func NewRollService(
	positionRepo repository.OptionPositionRepository,
	ruleRepo repository.RuleRepository,
	quoteStore repository.QuoteStore,
	calculator RollCalculator,
	log *logger.Logger,
) RollService {
	return &rollService{
		positionRepo: positionRepo,
		ruleRepo:     ruleRepo,
		quoteStore:   quoteStore,
		calculator:   calculator,
		logger:       log,
	}
}

type rollService struct {
	positionRepo repository.OptionPositionRepository
	ruleRepo     repository.RuleRepository
	quoteStore   repository.QuoteStore
	calculator   RollCalculator
	logger       *logger.Logger
}

func (s *rollService) Calculate(ctx context.Context, req *dto.RollCalculateRequest) (*dto.RollEconomicsResponse, error) {
	position, err := s.positionRepo.FindByID(ctx, req.PositionID)
	if err != nil {
		return nil, err
	}

	expiration, err := time.Parse("2006-01-02", req.CandidateExpiration)
	if err != nil {
		return nil, fmt.Errorf("invalid candidate_expiration %q: %w", req.CandidateExpiration, common.ErrValidation)
	}

	economics, err := s.calculator.Calculate(position, req.CandidateStrike, expiration, req.CandidatePremium)
	if err != nil {
		return nil, err
	}
	return &dto.RollEconomicsResponse{
		NetCreditPerShare: economics.NetCreditPerShare,
		NetCredit:         economics.NetCredit,
		DaysGained:        economics.DaysGained,
		StrikeDelta:       economics.StrikeDelta,
	}, nil
}

func (s *rollService) Simulate(ctx context.Context, req *dto.RollSimulateRequest) (*dto.RollSimulateResponse, error) {
	position, err := s.positionRepo.FindByID(ctx, req.PositionID)
	if err != nil {
		return nil, err
	}
	if len(req.Chain) == 0 {
		return nil, fmt.Errorf("chain is required: %w", common.ErrValidation)
	}

	underlyingPrice, err := s.resolveUnderlyingPrice(ctx, position, req.UnderlyingPrice)
	if err != nil {
		return nil, err
	}

	rule := s.ruleForPosition(ctx, position)
	band := s.bandFor(rule, req.TargetOtmPctLow, req.TargetOtmPctHigh)

	suggestions, economics, err := s.calculator.Simulate(position, req.Chain, underlyingPrice, band, GatesFromRule(rule), time.Now().UTC())
	if err != nil {
		return nil, err
	}

	return &dto.RollSimulateResponse{
		Best: &suggestions[0],
		Economics: dto.RollEconomicsResponse{
			NetCreditPerShare: economics.NetCreditPerShare,
			NetCredit:         economics.NetCredit,
			DaysGained:        economics.DaysGained,
			StrikeDelta:       economics.StrikeDelta,
		},
		Suggestions: suggestions,
	}, nil
}

// Analysis previews roll candidates for every open position of the account.
// Positions without a fresh underlying quote come back without a suggestion.
func (s *rollService) Analysis(ctx context.Context, accountID uint) ([]dto.RollAnalysisEntry, error) {
	positions, err := s.positionRepo.FindOpen(ctx, accountID, nil)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	entries := make([]dto.RollAnalysisEntry, 0, len(positions))
	for i := range positions {
		position := &positions[i]
		ticker := position.Asset.Ticker

		entry := dto.RollAnalysisEntry{
			PositionID: position.ID,
			Ticker:     ticker,
			Strike:     position.Strike,
			Expiration: position.Expiration.Format("2006-01-02"),
			Side:       position.Side,
			Dte:        utils.DaysToExpiry(position.Expiration, now),
		}

		if quote, err := s.quoteStore.Latest(ctx, ticker); err == nil {
			rule := s.ruleForPosition(ctx, position)
			if suggestions := s.calculator.Preview(position, rule, quote.Price(), now); len(suggestions) > 0 {
				entry.BestSuggestion = &suggestions[0]
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *rollService) resolveUnderlyingPrice(ctx context.Context, position *entity.OptionPosition, override *float64) (float64, error) {
	if override != nil {
		if *override <= 0 {
			return 0, fmt.Errorf("underlying_price must be positive: %w", common.ErrValidation)
		}
		return *override, nil
	}
	quote, err := s.quoteStore.Latest(ctx, position.Asset.Ticker)
	if err != nil {
		return 0, fmt.Errorf("no quote for %s, pass underlying_price: %w", position.Asset.Ticker, common.ErrInsufficientData)
	}
	return quote.Price(), nil
}

// ruleForPosition picks the first active rule in scope for the position, used
// to inherit the OTM band and liquidity gates. Nil when none applies.
func (s *rollService) ruleForPosition(ctx context.Context, position *entity.OptionPosition) *entity.Rule {
	rules, err := s.ruleRepo.FindActive(ctx, position.AccountID)
	if err != nil {
		s.logger.Warn("Failed to load rules for roll defaults",
			logger.UintField("account_id", position.AccountID), logger.ErrorField(err))
		return nil
	}
	for i := range rules {
		if rules[i].AppliesTo(position, position.Asset.Ticker) {
			return &rules[i]
		}
	}
	return nil
}

func (s *rollService) bandFor(rule *entity.Rule, low, high *float64) OtmBand {
	band := OtmBand{Low: 0.03, High: 0.08}
	if rule != nil {
		if rule.TargetOtmPctLow != nil {
			band.Low = *rule.TargetOtmPctLow
		}
		if rule.TargetOtmPctHigh != nil {
			band.High = *rule.TargetOtmPctHigh
		}
	}
	if low != nil {
		band.Low = *low
	}
	if high != nil {
		band.High = *high
	}
	return band
}
