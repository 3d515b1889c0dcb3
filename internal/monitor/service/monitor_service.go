package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang-options-monitor/internal/entity"
	"golang-options-monitor/internal/monitor/repository"
	"golang-options-monitor/pkg/common"
	"golang-options-monitor/pkg/logger"
	redisPkg "golang-options-monitor/pkg/redis"
	"golang-options-monitor/pkg/utils"

	"github.com/robfig/cron/v3"
	"gorm.io/datatypes"
)

// MonitorService is the evaluation engine. It walks every account's active
// rules over its open positions on a fixed interval and on quote updates, and
// raises alerts through the alert service.
type MonitorService interface {
	Start(ctx context.Context)
	RunCycle(ctx context.Context)
	EvaluateAccount(ctx context.Context, accountID uint)
}

// NewMonitorService creates the evaluation engine.
func NewMonitorService(
	accountRepo repository.AccountRepository,
	assetRepo repository.AssetRepository,
	positionRepo repository.OptionPositionRepository,
	ruleRepo repository.RuleRepository,
	quoteStore repository.QuoteStore,
	matcher RuleMatcher,
	rollCalculator RollCalculator,
	alertService AlertService,
	redisClient *redisPkg.Client,
	log *logger.Logger,
	pollingInterval time.Duration,
	evaluationCron string,
	expiryWarnDays int,
) MonitorService {
	return &monitorService{
		accountRepo:     accountRepo,
		assetRepo:       assetRepo,
		positionRepo:    positionRepo,
		ruleRepo:        ruleRepo,
		quoteStore:      quoteStore,
		matcher:         matcher,
		rollCalculator:  rollCalculator,
		alertService:    alertService,
		redisClient:     redisClient,
		logger:          log,
		pollingInterval: pollingInterval,
		evaluationCron:  evaluationCron,
		expiryWarnDays:  expiryWarnDays,
		cronParser:      cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
	}
}

type monitorService struct {
	accountRepo     repository.AccountRepository
	assetRepo       repository.AssetRepository
	positionRepo    repository.OptionPositionRepository
	ruleRepo        repository.RuleRepository
	quoteStore      repository.QuoteStore
	matcher         RuleMatcher
	rollCalculator  RollCalculator
	alertService    AlertService
	redisClient     *redisPkg.Client
	logger          *logger.Logger
	pollingInterval time.Duration
	evaluationCron  string
	expiryWarnDays  int
	cronParser      cron.Parser

	// One mutex per account. Evaluations for the same account never run
	// concurrently, which is what makes the per-day alert dedup safe.
	accountLocks sync.Map
}

// Start runs the periodic evaluation loop until the context is cancelled.
// Evaluation runs on the configured cron expression when one is set, otherwise
// on the fixed polling interval. Quote updates published by the bridge trigger
// an immediate evaluation of the affected accounts in between runs.
func (s *monitorService) Start(ctx context.Context) {
	if s.redisClient != nil {
		utils.GoSafe(func() { s.consumeQuoteUpdates(ctx) })
	}

	s.RunCycle(ctx)

	if s.evaluationCron != "" {
		schedule, err := s.cronParser.Parse(s.evaluationCron)
		if err != nil {
			s.logger.Error("Failed to parse evaluation cron expression, using polling interval",
				logger.StringField("cron", s.evaluationCron), logger.ErrorField(err))
		} else {
			s.runOnCron(ctx, schedule)
			return
		}
	}

	ticker := time.NewTicker(s.pollingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Monitor service stopping")
			return
		case <-ticker.C:
			s.RunCycle(ctx)
		}
	}
}

func (s *monitorService) runOnCron(ctx context.Context, schedule cron.Schedule) {
	for {
		timer := time.NewTimer(time.Until(schedule.Next(time.Now())))
		select {
		case <-ctx.Done():
			timer.Stop()
			s.logger.Info("Monitor service stopping")
			return
		case <-timer.C:
			s.RunCycle(ctx)
		}
	}
}

// RunCycle evaluates every account once.
func (s *monitorService) RunCycle(ctx context.Context) {
	accounts, err := s.accountRepo.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to list accounts for evaluation", logger.ErrorField(err))
		return
	}
	for _, account := range accounts {
		s.EvaluateAccount(ctx, account.ID)
	}
}

// EvaluateAccount runs one evaluation pass for the account under its lock.
func (s *monitorService) EvaluateAccount(ctx context.Context, accountID uint) {
	lock := s.lockFor(accountID)
	lock.Lock()
	defer lock.Unlock()

	rules, err := s.ruleRepo.FindActive(ctx, accountID)
	if err != nil {
		s.logger.Error("Failed to load active rules",
			logger.UintField("account_id", accountID), logger.ErrorField(err))
		return
	}

	positions, err := s.positionRepo.FindOpen(ctx, accountID, nil)
	if err != nil {
		s.logger.Error("Failed to load open positions",
			logger.UintField("account_id", accountID), logger.ErrorField(err))
		return
	}

	now := time.Now().UTC()
	for i := range positions {
		position := &positions[i]
		ticker := position.Asset.Ticker

		s.checkExpirationWarning(ctx, position, ticker, now)

		for j := range rules {
			rule := &rules[j]
			if !rule.AppliesTo(position, ticker) {
				continue
			}
			s.evaluateRule(ctx, rule, position, ticker, now)
		}
	}
}

func (s *monitorService) evaluateRule(ctx context.Context, rule *entity.Rule, position *entity.OptionPosition, ticker string, now time.Time) {
	input := MatchInput{
		Position:      position,
		ReferenceDate: now,
	}
	if quote, err := s.quoteStore.Latest(ctx, ticker); err == nil {
		input.UnderlyingQuote = quote
	}
	if quote, err := s.quoteStore.Latest(ctx, position.ContractSymbol(ticker)); err == nil {
		input.OptionQuote = quote
		input.Delta = quote.Delta
	}

	result := s.matcher.Evaluate(rule, input)
	if result.Skipped {
		return
	}

	if !result.Matched {
		// The rule stopped matching; any alert it still holds open for this
		// position, from today or an earlier day, is no longer actionable.
		if err := s.alertService.ExpireStale(ctx, rule.ID, position.ID); err != nil {
			s.logger.Error("Failed to expire stale alert",
				logger.UintField("rule_id", rule.ID),
				logger.UintField("position_id", position.ID),
				logger.ErrorField(err))
		}
		return
	}

	reason := entity.AlertReasonRollTrigger
	if rule.PremiumCloseThreshold != nil {
		reason = entity.AlertReasonProfitTake
	}

	alert := &entity.Alert{
		AccountID:   position.AccountID,
		RuleID:      utils.ToPointer(rule.ID),
		PositionID:  utils.ToPointer(position.ID),
		Reason:      reason,
		Message:     s.buildMessage(reason, position, ticker, result),
		TriggeredAt: now,
		Payload:     s.buildPayload(rule, position, input, result, now),
	}

	created, _, err := s.alertService.CreateIfAbsent(ctx, alert)
	if err != nil {
		s.logger.Error("Failed to create alert",
			logger.UintField("rule_id", rule.ID),
			logger.UintField("position_id", position.ID),
			logger.ErrorField(err))
		return
	}
	if created {
		s.logger.Info("Rule matched",
			logger.UintField("rule_id", rule.ID),
			logger.UintField("position_id", position.ID),
			logger.StringField("reason", reason),
			logger.IntField("dte", result.Dte))
	}
}

// checkExpirationWarning raises a rule-less warning alert when the position is
// inside the expiry warning horizon. The per-day dedup applies as usual.
func (s *monitorService) checkExpirationWarning(ctx context.Context, position *entity.OptionPosition, ticker string, now time.Time) {
	dte := utils.DaysToExpiry(position.Expiration, now)
	if dte < 0 || dte > s.expiryWarnDays {
		return
	}

	alert := &entity.Alert{
		AccountID:   position.AccountID,
		PositionID:  utils.ToPointer(position.ID),
		Reason:      entity.AlertReasonExpirationWarning,
		Message:     fmt.Sprintf("%s %.2f %s expires in %d day(s) (%s)", ticker, position.Strike, position.Side, dte, position.Expiration.Format("2006-01-02")),
		TriggeredAt: now,
	}
	if _, _, err := s.alertService.CreateIfAbsent(ctx, alert); err != nil {
		s.logger.Error("Failed to create expiration warning",
			logger.UintField("position_id", position.ID), logger.ErrorField(err))
	}
}

func (s *monitorService) buildMessage(reason string, position *entity.OptionPosition, ticker string, result MatchResult) string {
	switch reason {
	case entity.AlertReasonProfitTake:
		return fmt.Sprintf("Profit take on %s %.2f %s: premium at or below threshold, %d DTE", ticker, position.Strike, position.Side, result.Dte)
	default:
		return fmt.Sprintf("Roll window open on %s %.2f %s: %d DTE, OTM %.1f%%", ticker, position.Strike, position.Side, result.Dte, result.OtmPct*100)
	}
}

// buildPayload serializes the evaluation snapshot plus roll suggestions for
// the notification message and the REST alert detail.
func (s *monitorService) buildPayload(rule *entity.Rule, position *entity.OptionPosition, input MatchInput, result MatchResult, now time.Time) datatypes.JSON {
	payload := map[string]interface{}{
		"dte":     result.Dte,
		"otm_pct": result.OtmPct,
	}
	if input.UnderlyingQuote != nil {
		payload["underlying_price"] = input.UnderlyingQuote.Price()

		if suggestions := s.rollCalculator.Preview(position, rule, input.UnderlyingQuote.Price(), now); len(suggestions) > 0 {
			payload["suggestions"] = suggestions
		}
	}
	if input.OptionQuote != nil {
		payload["option_premium"] = input.OptionQuote.Price()
	}
	if input.Delta != nil {
		payload["delta"] = *input.Delta
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		s.logger.Error("Failed to marshal alert payload", logger.ErrorField(err))
		return nil
	}
	return datatypes.JSON(raw)
}

// consumeQuoteUpdates re-evaluates the accounts holding the updated symbol as
// soon as the bridge pushes a fresh quote, instead of waiting for the tick.
func (s *monitorService) consumeQuoteUpdates(ctx context.Context) {
	pubsub := s.redisClient.Subscribe(ctx, common.RedisChannelQuoteUpdates)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			s.onQuoteUpdate(ctx, msg.Payload)
		}
	}
}

func (s *monitorService) onQuoteUpdate(ctx context.Context, symbol string) {
	// Option contract symbols embed the underlying ticker before the first
	// dash, e.g. "PETR4-C-64.50-20250919".
	ticker := symbol
	if idx := strings.Index(symbol, "-"); idx > 0 {
		ticker = symbol[:idx]
	}

	assets, err := s.assetRepo.FindByTicker(ctx, ticker)
	if err != nil {
		s.logger.Error("Failed to resolve assets for quote update",
			logger.StringField("symbol", symbol), logger.ErrorField(err))
		return
	}

	seen := make(map[uint]struct{}, len(assets))
	for _, asset := range assets {
		if _, ok := seen[asset.AccountID]; ok {
			continue
		}
		seen[asset.AccountID] = struct{}{}
		s.EvaluateAccount(ctx, asset.AccountID)
	}
}

func (s *monitorService) lockFor(accountID uint) *sync.Mutex {
	lock, _ := s.accountLocks.LoadOrStore(accountID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}
